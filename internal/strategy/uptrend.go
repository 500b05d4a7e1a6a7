package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

var _ Evaluator = (*UptrendTiered)(nil)

// UptrendTiered is the gradual-entry uptrend variant: RSI is bucketed
// into three mutually exclusive tiers, each with its own position size,
// stop-loss and take-profit; RSI above the hard gate is categorically
// no-entry. The tier table is evaluated top-down, lowest bound first.
//
// Confirmation conditions are equally weighted; entry requires the
// strength ratio to clear the configured threshold (3 of 4 by default).
// Exits are risk-only (TP/SL), enforced by the simulator from the tier
// row picked at entry.
type UptrendTiered struct {
	p UptrendParams
}

// NewUptrendTiered creates the tiered gradual-entry evaluator.
func NewUptrendTiered(p UptrendParams) *UptrendTiered {
	return &UptrendTiered{p: p}
}

func (u *UptrendTiered) Name() string { return "uptrend-tiered" }

func (u *UptrendTiered) Evaluate(snap indicator.Snapshot, regime trend.Regime) Decision {
	if !u.ready(snap) {
		return Decision{}
	}
	if regime != trend.Uptrend {
		return Decision{}
	}

	rsi := snap.RSI.V
	if rsi > u.p.MaxRSI {
		return Decision{}
	}

	// Lowest matching tier wins.
	var row *Tier
	for i := range u.p.Tiers {
		if rsi <= u.p.Tiers[i].MaxRSI {
			row = &u.p.Tiers[i]
			break
		}
	}
	if row == nil {
		return Decision{}
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"price_near_ema21", snap.Close > snap.EMASlow.V*0.98},
		{"short_term_uptrend", snap.EMAFast.V > snap.EMASlow.V*0.99},
		{"not_overbought", snap.Close <= snap.BandMiddle.V*1.01},
		{"volume_confirmation", snap.VolumeRatio >= 1.0},
	}

	var conds []string
	passed := 0
	for _, c := range checks {
		if c.ok {
			passed++
			conds = append(conds, c.name)
		}
	}
	strength := float64(passed) / float64(len(checks))

	return Decision{
		Enter:         strength >= u.p.EntryStrength,
		Strength:      strength,
		Conditions:    conds,
		Tier:          row.Name,
		PositionSize:  row.PositionSize,
		StopLossPct:   row.StopLossPct,
		TakeProfitPct: row.TakeProfitPct,
	}
}

func (u *UptrendTiered) CheckExit(_ indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	// TP/SL only, handled by the simulator from the entry tier.
	return false, ""
}

func (u *UptrendTiered) ready(snap indicator.Snapshot) bool {
	return snap.RSI.Ready && snap.EMAFast.Ready && snap.EMASlow.Ready &&
		snap.BandMiddle.Ready && snap.VolumeMA.Ready &&
		snap.EMATrend.Ready && snap.EMABaseline.Ready
}
