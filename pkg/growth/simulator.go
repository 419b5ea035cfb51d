// Package growth generates the deterministic daily balance series shown on
// the portfolio charts.
package growth

import "math"

const (
	// every day with day%LossEvery == LossOffset books LossRate instead of growth
	LossEvery  = 7
	LossOffset = 3
	LossRate   = 0.005
)

type DailySample struct {
	Day     int     `json:"day"`
	Balance float64 `json:"balance"`
	Profit  float64 `json:"profit"`
}

// Simulate compounds startBalance over days, spreading monthlyGrowthRate
// evenly across them. The running balance is kept at full precision; only
// the emitted samples are rounded to cents.
func Simulate(startBalance float64, days int, monthlyGrowthRate float64) []DailySample {
	if days <= 0 {
		return []DailySample{}
	}

	dailyRate := monthlyGrowthRate / float64(days)
	balance := startBalance
	out := make([]DailySample, 0, days)

	for day := 1; day <= days; day++ {
		profit := balance * dailyRate
		if IsLossDay(day) {
			profit = -balance * LossRate
		}
		balance += profit

		out = append(out, DailySample{
			Day:     day,
			Balance: Round2(balance),
			Profit:  Round2(profit),
		})
	}
	return out
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func IsLossDay(day int) bool {
	return day%LossEvery == LossOffset
}
