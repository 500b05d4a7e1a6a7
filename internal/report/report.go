// Package report formats backtest results for the console and persists
// the full trade detail as JSON. Pure presentation, no simulation logic.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"coinscalp/internal/backtest"
)

// RunReport is the serialized output of one multi-strategy backtest run.
type RunReport struct {
	Market      string             `json:"market"`
	Interval    string             `json:"interval"`
	Candles     int                `json:"candles"`
	GeneratedAt time.Time          `json:"generated_at"`
	Config      backtest.Config    `json:"config"`
	Results     []*backtest.Result `json:"results"`
}

// WriteTable prints the cross-strategy comparison table.
func WriteTable(w io.Writer, rep *RunReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "================================================================================")
	fmt.Fprintf(w, "BACKTEST RESULTS: %s %s (%d candles)\n", rep.Market, rep.Interval, rep.Candles)
	fmt.Fprintln(w, "================================================================================")
	fmt.Fprintf(w, "%-18s %8s %10s %10s %12s %15s\n",
		"Strategy", "Trades", "Win Rate", "Return %", "PF", "Profit")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------")

	for _, r := range rep.Results {
		st := r.Stats
		fmt.Fprintf(w, "%-18s %8d %9.1f%% %10.2f %12.2f %15.0f\n",
			r.Strategy, st.TotalTrades, st.WinRate, st.ReturnPct, st.ProfitFactor, st.Profit)
	}
	fmt.Fprintln(w, "================================================================================")

	if best := Best(rep.Results); best != nil {
		st := best.Stats
		fmt.Fprintf(w, "\nBEST STRATEGY: %s\n", best.Strategy)
		fmt.Fprintf(w, "   Return: %.2f%% (%.0f)\n", st.ReturnPct, st.Profit)
		fmt.Fprintf(w, "   Win Rate: %.1f%% (%d/%d)\n", st.WinRate, st.WinningTrades, st.WinningTrades+st.LosingTrades)
		fmt.Fprintf(w, "   Avg Profit per Trade: %.0f\n", st.AvgProfit)
		fmt.Fprintln(w)
	}
}

// Best returns the result with the highest return, or nil when empty.
func Best(results []*backtest.Result) *backtest.Result {
	var best *backtest.Result
	for _, r := range results {
		if best == nil || r.Stats.ReturnPct > best.Stats.ReturnPct {
			best = r
		}
	}
	return best
}

// Sorted returns the results ordered by return descending.
func Sorted(results []*backtest.Result) []*backtest.Result {
	out := make([]*backtest.Result, len(results))
	copy(out, results)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stats.ReturnPct > out[j].Stats.ReturnPct
	})
	return out
}

// Save writes the full report (including every trade) as indented JSON.
func Save(path string, rep *RunReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
