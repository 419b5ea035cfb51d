package vip

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeZero(t *testing.T) {
	st := Compute(0)
	require.NotNil(t, st.NextThreshold)
	assert.Equal(t, 0.0, st.PreviousThreshold)
	assert.Equal(t, 2000.0, *st.NextThreshold)
	assert.Equal(t, 2.0, st.NextDiscount)
	assert.Equal(t, 0.0, st.CurrentDiscount)
	assert.Equal(t, 2000.0, st.AmountNeeded)
	assert.Equal(t, 0.0, st.ProgressPercent)
	assert.False(t, st.MaxTier)
}

func TestComputeBoundaryGoesToNextTier(t *testing.T) {
	st := Compute(2000)
	require.NotNil(t, st.NextThreshold)
	assert.Equal(t, 2000.0, st.PreviousThreshold)
	assert.Equal(t, 5000.0, *st.NextThreshold)
	assert.Equal(t, 5.0, st.NextDiscount)
	assert.Equal(t, 2.0, st.CurrentDiscount)
	assert.Equal(t, 3000.0, st.AmountNeeded)
	assert.Equal(t, 0.0, st.ProgressPercent)

	st = Compute(5000)
	require.NotNil(t, st.NextThreshold)
	assert.Equal(t, 10000.0, *st.NextThreshold)
	assert.Equal(t, 10.0, st.NextDiscount)
	assert.Equal(t, 5.0, st.CurrentDiscount)
}

func TestComputeMidTier(t *testing.T) {
	st := Compute(3500)
	assert.Equal(t, 1500.0, st.AmountNeeded)
	assert.InDelta(t, 50.0, st.ProgressPercent, 1e-9)

	st = Compute(7500)
	assert.Equal(t, 2500.0, st.AmountNeeded)
	assert.InDelta(t, 50.0, st.ProgressPercent, 1e-9)

	st = Compute(1999.99)
	assert.InDelta(t, 0.01, st.AmountNeeded, 1e-9)
	assert.Less(t, st.ProgressPercent, 100.0)
}

func TestComputeMaxTier(t *testing.T) {
	for _, b := range []float64{10000, 10000.01, 250000} {
		st := Compute(b)
		assert.Nil(t, st.NextThreshold, "balance %v", b)
		assert.Equal(t, 0.0, st.AmountNeeded)
		assert.Equal(t, 100.0, st.ProgressPercent)
		assert.Equal(t, 10.0, st.CurrentDiscount)
		assert.Equal(t, 10.0, st.NextDiscount)
		assert.Equal(t, 10000.0, st.PreviousThreshold)
		assert.True(t, st.MaxTier)
		assert.Equal(t, b, st.CurrentBalance)
	}
}

func TestComputeCoercesInvalid(t *testing.T) {
	for _, b := range []float64{-1, -5000, math.NaN(), math.Inf(1), math.Inf(-1)} {
		st := Compute(b)
		assert.Equal(t, Compute(0), st, "balance %v", b)
	}
}

func TestProgressStaysInRange(t *testing.T) {
	for b := 0.0; b < 10000; b += 37.5 {
		st := Compute(b)
		assert.GreaterOrEqual(t, st.ProgressPercent, 0.0)
		assert.LessOrEqual(t, st.ProgressPercent, 100.0)
		require.NotNil(t, st.NextThreshold)
		assert.Equal(t, *st.NextThreshold-b, st.AmountNeeded)
	}
}

func TestThresholdTableContiguous(t *testing.T) {
	require.NotEmpty(t, Thresholds)
	assert.Equal(t, 0.0, Thresholds[0].Lower)
	for i := 1; i < len(Thresholds); i++ {
		require.NotNil(t, Thresholds[i-1].Upper)
		assert.Equal(t, *Thresholds[i-1].Upper, Thresholds[i].Lower)
	}
	assert.Nil(t, Thresholds[len(Thresholds)-1].Upper)
}

func TestParseBalance(t *testing.T) {
	cases := map[string]float64{
		"":         0,
		"abc":      0,
		"-12":      0,
		"NaN":      0,
		"Inf":      0,
		" 2500.5 ": 2500.5,
		"0.000001": 0.000001,
		"10000":    10000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseBalance(in), "input %q", in)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	assert.Equal(t, Compute(100), c.Get(100))
	assert.Equal(t, Compute(100), c.Get(100))
	assert.Equal(t, 1, c.Len())

	c.Get(200)
	assert.Equal(t, 2, c.Len())
	c.Get(300)
	assert.Equal(t, 1, c.Len())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := float64(i * 1000)
			assert.Equal(t, Compute(b), c.Get(b))
		}(i)
	}
	wg.Wait()
}
