// Package vip computes performance-fee discount tiers from a deposited balance.
package vip

import (
	"math"
	"strconv"
	"strings"
)

// Threshold is one row of the tier table. Discount is the fee discount (percent)
// unlocked once the balance reaches Upper. The last row has no Upper.
type Threshold struct {
	Lower    float64
	Upper    *float64
	Discount float64
}

func bound(v float64) *float64 { return &v }

// Thresholds is contiguous and ordered ascending.
var Thresholds = []Threshold{
	{Lower: 0, Upper: bound(2000), Discount: 2},
	{Lower: 2000, Upper: bound(5000), Discount: 5},
	{Lower: 5000, Upper: bound(10000), Discount: 10},
	{Lower: 10000, Upper: nil, Discount: 10},
}

// Status is the progress of a balance towards the next discount tier.
type Status struct {
	CurrentBalance    float64  `json:"current_balance"`
	PreviousThreshold float64  `json:"previous_threshold"`
	NextThreshold     *float64 `json:"next_threshold"`
	NextDiscount      float64  `json:"next_discount"`
	CurrentDiscount   float64  `json:"current_discount"`
	AmountNeeded      float64  `json:"amount_needed"`
	ProgressPercent   float64  `json:"progress_percent"`
	MaxTier           bool     `json:"max_tier"`
}

// Compute returns the tier status for balance. Negative and non-finite
// balances count as zero. A balance equal to a boundary belongs to the
// higher tier.
//
// At the top tier PreviousThreshold is that tier's lower bound (10000) and
// NextDiscount repeats CurrentDiscount, so clients never render a 0% next
// step. NextThreshold is nil and AmountNeeded is 0.
func Compute(balance float64) Status {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		balance = 0
	}

	current := 0.0
	for _, t := range Thresholds {
		if t.Upper == nil {
			return Status{
				CurrentBalance:    balance,
				PreviousThreshold: t.Lower,
				NextDiscount:      t.Discount,
				CurrentDiscount:   t.Discount,
				ProgressPercent:   100,
				MaxTier:           true,
			}
		}
		if balance < *t.Upper {
			next := *t.Upper
			return Status{
				CurrentBalance:    balance,
				PreviousThreshold: t.Lower,
				NextThreshold:     &next,
				NextDiscount:      t.Discount,
				CurrentDiscount:   current,
				AmountNeeded:      next - balance,
				ProgressPercent:   (balance - t.Lower) / (next - t.Lower) * 100,
			}
		}
		current = t.Discount
	}
	// unreachable while the table ends with an open row
	return Status{CurrentBalance: balance, ProgressPercent: 100, MaxTier: true}
}

// ParseBalance reads a decimal balance string as handed out by wallet
// providers. Empty or malformed input yields 0.
func ParseBalance(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
