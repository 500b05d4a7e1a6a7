// Package trend classifies the market regime from trend EMAs and price.
package trend

import "coinscalp/internal/indicator"

// Regime is the categorical market state at one candle index.
type Regime string

const (
	Uptrend   Regime = "uptrend"
	Downtrend Regime = "downtrend"
	Sideways  Regime = "sideways"
)

// distancePct is the minimum price distance from EMA50 (in percent)
// before a trend call is made; anything closer is sideways.
const distancePct = 0.5

// Classify derives the regime from EMA50, EMA200 and the current price.
// Pure and stateless: re-evaluated independently at every index, with
// no hysteresis.
func Classify(emaTrend, emaBaseline, price float64) Regime {
	if emaTrend > emaBaseline && price > emaTrend {
		above := (price - emaTrend) / emaTrend * 100
		if above > distancePct {
			return Uptrend
		}
	}

	if emaTrend < emaBaseline && price < emaTrend {
		below := (emaTrend - price) / emaTrend * 100
		if below > distancePct {
			return Downtrend
		}
	}

	return Sideways
}

// FromSnapshot classifies the regime for one indicator snapshot.
// Returns Sideways with ok=false while the trend EMAs are still warming
// up, so callers can skip regime-gated decisions instead of trading on
// an undefined trend.
func FromSnapshot(snap indicator.Snapshot) (Regime, bool) {
	if !snap.EMATrend.Ready || !snap.EMABaseline.Ready {
		return Sideways, false
	}
	return Classify(snap.EMATrend.V, snap.EMABaseline.V, snap.Close), true
}
