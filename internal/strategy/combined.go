package strategy

import (
	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

var _ Evaluator = (*Combined)(nil)

// Combined is the regime-filtered multi-signal variant for spot trading
// (long only). Entry requires an uptrend regime, an oversold trigger
// (RSI or lower-band touch), and a rising fast EMA. It owns all four
// exit causes (RSI, upper band, stop-loss, trend reversal) so that a
// bar hitting several at once records the dominant reason:
// TREND_REVERSAL > STOP_LOSS > RSI > BB.
type Combined struct {
	p CombinedParams
}

// NewCombined creates the regime-filtered combined evaluator.
func NewCombined(p CombinedParams) *Combined {
	return &Combined{p: p}
}

func (c *Combined) Name() string { return "combined" }

func (c *Combined) Evaluate(snap indicator.Snapshot, regime trend.Regime) Decision {
	if !c.ready(snap) {
		return Decision{}
	}
	if regime != trend.Uptrend {
		return Decision{}
	}

	rsiSignal := snap.RSI.V < c.p.RSIEntry
	bandSignal := snap.Close <= snap.BandLower.V*c.p.BandEntryTol
	emaRising := snap.EMAFast.V > snap.PrevEMAFast.V

	if !(rsiSignal || bandSignal) || !emaRising {
		return Decision{}
	}

	conds := []string{"uptrend", "ema_rising"}
	if rsiSignal {
		conds = append(conds, "rsi_oversold")
	}
	if bandSignal {
		conds = append(conds, "near_lower_band")
	}

	return Decision{
		Enter:      true,
		Strength:   1.0,
		Conditions: conds,
	}
}

func (c *Combined) CheckExit(snap indicator.Snapshot, regime trend.Regime, pos *model.Position) (bool, model.ExitReason) {
	if !c.ready(snap) {
		return false, ""
	}

	trendReversal := regime != trend.Uptrend
	stopLoss := snap.Close <= pos.EntryPrice*(1-c.p.StopLossPct/100)
	rsiExit := snap.RSI.V > c.p.RSIExit
	bandExit := snap.Close >= snap.BandUpper.V*c.p.BandExitTol

	switch {
	case trendReversal:
		return true, model.ExitTrendReversal
	case stopLoss:
		return true, model.ExitStopLoss
	case rsiExit:
		return true, model.ExitRSI
	case bandExit:
		return true, model.ExitBand
	}
	return false, ""
}

func (c *Combined) ready(snap indicator.Snapshot) bool {
	return snap.RSI.Ready && snap.BandLower.Ready && snap.BandUpper.Ready &&
		snap.EMAFast.Ready && snap.PrevEMAFast.Ready &&
		snap.EMATrend.Ready && snap.EMABaseline.Ready
}
