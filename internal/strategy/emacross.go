package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

var _ Evaluator = (*EMACross)(nil)

// EMACross buys on the step where the fast EMA crosses above the slow
// EMA (golden cross) and sells on the reverse cross. The crossover needs
// the previous step's EMA values, which the snapshot carries;
// the only evaluator with a one-step lookback.
type EMACross struct{}

// NewEMACross creates the EMA crossover evaluator.
func NewEMACross() *EMACross { return &EMACross{} }

func (e *EMACross) Name() string { return "ema-cross" }

func (e *EMACross) Evaluate(snap indicator.Snapshot, _ trend.Regime) Decision {
	if !e.ready(snap) {
		return Decision{}
	}
	if snap.PrevEMAFast.V <= snap.PrevEMASlow.V && snap.EMAFast.V > snap.EMASlow.V {
		return Decision{
			Enter:      true,
			Strength:   1.0,
			Conditions: []string{"golden_cross"},
		}
	}
	return Decision{}
}

func (e *EMACross) CheckExit(snap indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	if !e.ready(snap) {
		return false, ""
	}
	if snap.PrevEMAFast.V >= snap.PrevEMASlow.V && snap.EMAFast.V < snap.EMASlow.V {
		return true, model.ExitSignal
	}
	return false, ""
}

// ready requires both current and previous EMA values, so the first
// defined index can never fire a cross on an undefined previous step.
func (e *EMACross) ready(snap indicator.Snapshot) bool {
	return snap.EMAFast.Ready && snap.EMASlow.Ready &&
		snap.PrevEMAFast.Ready && snap.PrevEMASlow.Ready
}
