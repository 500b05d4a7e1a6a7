package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

var _ Evaluator = (*RSIThreshold)(nil)

// RSIThreshold buys oversold (RSI below the low bound) and sells
// overbought (RSI above the high bound).
type RSIThreshold struct {
	low  float64
	high float64
}

// NewRSIThreshold creates the plain RSI oversold/overbought evaluator.
func NewRSIThreshold(p RSIThresholdParams) *RSIThreshold {
	return &RSIThreshold{low: p.LowBound, high: p.HighBound}
}

func (r *RSIThreshold) Name() string { return "rsi" }

func (r *RSIThreshold) Evaluate(snap indicator.Snapshot, _ trend.Regime) Decision {
	if !snap.RSI.Ready {
		return Decision{}
	}
	if snap.RSI.V < r.low {
		return Decision{
			Enter:      true,
			Strength:   1.0,
			Conditions: []string{"rsi_oversold"},
		}
	}
	return Decision{}
}

func (r *RSIThreshold) CheckExit(snap indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	if !snap.RSI.Ready {
		return false, ""
	}
	if snap.RSI.V > r.high {
		return true, model.ExitRSI
	}
	return false, ""
}
