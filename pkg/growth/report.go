package growth

// Point is the {x, y} pair chart components consume.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Summary struct {
	StartBalance float64 `json:"start_balance"`
	FinalBalance float64 `json:"final_balance"`
	TotalProfit  float64 `json:"total_profit"`
	ReturnPct    float64 `json:"return_pct"`
	LossDays     int     `json:"loss_days"`
	BestDay      int     `json:"best_day"`
	WorstDay     int     `json:"worst_day"`
}

// Summarize condenses a simulated series. An empty series reports the start
// balance unchanged.
func Summarize(startBalance float64, samples []DailySample) Summary {
	s := Summary{StartBalance: startBalance, FinalBalance: startBalance}
	if len(samples) == 0 {
		return s
	}

	best, worst := samples[0], samples[0]
	for _, d := range samples {
		if d.Profit < 0 {
			s.LossDays++
		}
		if d.Profit > best.Profit {
			best = d
		}
		if d.Profit < worst.Profit {
			worst = d
		}
	}
	s.FinalBalance = samples[len(samples)-1].Balance
	s.TotalProfit = Round2(s.FinalBalance - startBalance)
	if startBalance != 0 {
		s.ReturnPct = Round2(s.TotalProfit / startBalance * 100)
	}
	s.BestDay = best.Day
	s.WorstDay = worst.Day
	return s
}

func BalancePoints(samples []DailySample) []Point {
	pts := make([]Point, len(samples))
	for i, d := range samples {
		pts[i] = Point{X: float64(d.Day), Y: d.Balance}
	}
	return pts
}

func ProfitPoints(samples []DailySample) []Point {
	pts := make([]Point, len(samples))
	for i, d := range samples {
		pts[i] = Point{X: float64(d.Day), Y: d.Profit}
	}
	return pts
}

// PadProfits returns exactly width daily profits, zero-filling missing days
// and truncating extra ones.
func PadProfits(samples []DailySample, width int) []float64 {
	if width <= 0 {
		return []float64{}
	}
	out := make([]float64, width)
	for i := 0; i < width && i < len(samples); i++ {
		out[i] = samples[i].Profit
	}
	return out
}
