package backtest

import "coinscalp/internal/model"

// Stats is the summary reduction over one run's trade sequence.
// WinRate and ReturnPct are percentages. ProfitFactor is
// |sum of winning profits| / |sum of losing profits|, defined as 0 when
// there are no losing trades.
type Stats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	FinalCapital  float64 `json:"final_capital"`
	Profit        float64 `json:"profit"`
	ReturnPct     float64 `json:"return_pct"`
	AvgProfit     float64 `json:"avg_profit"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	MaxProfit     float64 `json:"max_profit"`
	MaxLoss       float64 `json:"max_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
}

// Summarize reduces a trade sequence into Stats. A zero-trade run
// yields a well-defined all-zero summary with FinalCapital equal to the
// initial capital, never an error.
func Summarize(trades []model.Trade, initialCapital float64) Stats {
	st := Stats{FinalCapital: initialCapital}

	var sells []model.Trade
	for _, t := range trades {
		switch t.Type {
		case model.TradeBuy:
			st.TotalTrades++
		case model.TradeSell:
			sells = append(sells, t)
		}
	}
	if len(trades) > 0 && trades[len(trades)-1].Type == model.TradeSell {
		st.FinalCapital = trades[len(trades)-1].Capital
	}

	st.Profit = st.FinalCapital - initialCapital
	if initialCapital > 0 {
		st.ReturnPct = st.Profit / initialCapital * 100
	}

	if len(sells) == 0 {
		return st
	}

	var sumAll, sumWins, sumLosses float64
	for i, t := range sells {
		p := t.Profit
		sumAll += p
		if p > 0 {
			st.WinningTrades++
			sumWins += p
		} else if p < 0 {
			st.LosingTrades++
			sumLosses += p
		}
		if i == 0 || p > st.MaxProfit {
			st.MaxProfit = p
		}
		if i == 0 || p < st.MaxLoss {
			st.MaxLoss = p
		}
	}

	st.WinRate = float64(st.WinningTrades) / float64(len(sells)) * 100
	st.AvgProfit = sumAll / float64(len(sells))
	if st.WinningTrades > 0 {
		st.AvgWin = sumWins / float64(st.WinningTrades)
	}
	if st.LosingTrades > 0 {
		st.AvgLoss = sumLosses / float64(st.LosingTrades)
	}
	if sumLosses != 0 {
		st.ProfitFactor = abs(sumWins) / abs(sumLosses)
	}

	return st
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
