package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New()
	err := s.Register(context.Background(), "leaderboard", "every minute", &countingRefresher{})
	require.Error(t, err)

	// five-field specs are rejected once seconds are enabled
	err = s.Register(context.Background(), "leaderboard", "* * * * *", &countingRefresher{})
	require.Error(t, err)
}

func TestRunExecutesJobs(t *testing.T) {
	s := New()
	ok := &countingRefresher{}
	failing := &countingRefresher{err: errors.New("rpc down")}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Register(ctx, "ok", "* * * * * *", ok))
	require.NoError(t, s.Register(ctx, "failing", "* * * * * *", failing))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return ok.calls.Load() > 0 && failing.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
