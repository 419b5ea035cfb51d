package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/copytrade-hub/pkg/growth"
	"github.com/copytrade-hub/pkg/vip"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

func main() {
	start := flag.Float64("start", 1000, "starting balance")
	days := flag.Int("days", 30, "days to project")
	rate := flag.Float64("rate", 0.20, "monthly growth rate (0.20 = 20%)")
	balance := flag.Float64("balance", -1, "show VIP tier progress for this deposit")
	flag.Parse()

	samples := growth.Simulate(*start, *days, *rate)
	printGrowth(*start, samples)

	if *balance >= 0 {
		fmt.Println(renderVIP(vip.Compute(*balance)))
	}
}

func printGrowth(start float64, samples []growth.DailySample) {
	if len(samples) == 0 {
		color.Yellow("nothing to project")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Day", "Balance", "Profit"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	for _, s := range samples {
		profit := fmt.Sprintf("%+.2f", s.Profit)
		if growth.IsLossDay(s.Day) {
			profit = red(profit)
		} else {
			profit = green(profit)
		}
		table.Append([]string{fmt.Sprint(s.Day), fmt.Sprintf("%.2f", s.Balance), profit})
	}

	sum := growth.Summarize(start, samples)
	table.SetFooter([]string{"", fmt.Sprintf("%.2f", sum.FinalBalance), fmt.Sprintf("%+.2f (%.2f%%)", sum.TotalProfit, sum.ReturnPct)})
	table.Render()
	fmt.Printf("loss days: %d  best day: %d  worst day: %d\n\n", sum.LossDays, sum.BestDay, sum.WorstDay)
}

func renderVIP(st vip.Status) string {
	body := fmt.Sprintf("Balance:  $%.2f\nDiscount: %.0f%%\n", st.CurrentBalance, st.CurrentDiscount)
	if st.MaxTier {
		body += "Max tier reached"
	} else {
		body += fmt.Sprintf("Progress: %.1f%%\nDeposit $%.2f more for %.0f%% off", st.ProgressPercent, st.AmountNeeded, st.NextDiscount)
	}
	return boxStyle.Render(titleStyle.Render("VIP tier") + "\n" + body)
}
