package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

var _ Evaluator = (*Sideways)(nil)

// weights of the four sideways entry factors; they sum to 1.0.
const (
	wNearLowerBand = 0.35
	wDeepOversold  = 0.25
	wNotExtreme    = 0.20
	wVolumeSpike   = 0.20
)

// Sideways is the oversold range-trading variant: a hard RSI gate
// rejects anything not deeply oversold, then a 4-factor weighted score
// (band proximity, oversold depth, not-too-extreme floor, volume spike)
// must reach the entry threshold. Exits are risk-only (TP/SL).
type Sideways struct {
	p SidewaysParams
}

// NewSideways creates the oversold sideways evaluator.
func NewSideways(p SidewaysParams) *Sideways {
	return &Sideways{p: p}
}

func (s *Sideways) Name() string { return "sideways" }

func (s *Sideways) Evaluate(snap indicator.Snapshot, regime trend.Regime) Decision {
	if !s.ready(snap) {
		return Decision{}
	}
	if regime != trend.Sideways {
		return Decision{}
	}

	rsi := snap.RSI.V
	if rsi > s.p.MaxRSI {
		return Decision{}
	}

	strength := 0.0
	var conds []string
	if snap.BandPosition < s.p.BandPosition {
		strength += wNearLowerBand
		conds = append(conds, "near_lower_band")
	}
	if rsi <= s.p.MaxRSI {
		strength += wDeepOversold
		conds = append(conds, "deeply_oversold")
	}
	if rsi >= s.p.MinRSI {
		strength += wNotExtreme
		conds = append(conds, "not_extreme")
	}
	if snap.VolumeRatio >= s.p.VolumeSpike {
		strength += wVolumeSpike
		conds = append(conds, "volume_spike")
	}

	return Decision{
		Enter:         strength >= s.p.EntryStrength,
		Strength:      strength,
		Conditions:    conds,
		StopLossPct:   s.p.StopLossPct,
		TakeProfitPct: s.p.TakeProfitPct,
	}
}

func (s *Sideways) CheckExit(_ indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	return false, ""
}

func (s *Sideways) ready(snap indicator.Snapshot) bool {
	return snap.RSI.Ready && snap.BandUpper.Ready && snap.VolumeMA.Ready &&
		snap.EMATrend.Ready && snap.EMABaseline.Ready
}
