package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

// Compile-time interface check.
var _ Evaluator = (*MeanReversion)(nil)

// MeanReversion buys a touch of the lower Bollinger band and sells the
// reversion to the middle band, with a small tolerance on both sides.
type MeanReversion struct {
	tolerance float64
}

// NewMeanReversion creates the Bollinger mean-reversion evaluator.
func NewMeanReversion(p MeanReversionParams) *MeanReversion {
	return &MeanReversion{tolerance: p.Tolerance}
}

func (m *MeanReversion) Name() string { return "mean-reversion" }

func (m *MeanReversion) Evaluate(snap indicator.Snapshot, _ trend.Regime) Decision {
	if !snap.BandLower.Ready {
		return Decision{}
	}
	if snap.Close <= snap.BandLower.V*(1+m.tolerance) {
		return Decision{
			Enter:      true,
			Strength:   1.0,
			Conditions: []string{"near_lower_band"},
		}
	}
	return Decision{}
}

func (m *MeanReversion) CheckExit(snap indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	if !snap.BandMiddle.Ready {
		return false, ""
	}
	if snap.Close >= snap.BandMiddle.V*(1-m.tolerance) {
		return true, model.ExitBand
	}
	return false, ""
}
