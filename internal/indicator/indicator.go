// Package indicator provides technical indicator calculations over candle data.
//
// All indicators implement the Indicator interface, receiving candles and
// producing float64 values. Each Update is O(1) amortized over a bounded
// trailing window, so the same instances drive both a one-pass batch
// computation and incremental per-candle recomputation with identical
// results.
package indicator

import "coinscalp/internal/model"

// Indicator is the interface for all technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "RSI", "EMA").
	Name() string

	// Update feeds a new candle and recalculates.
	Update(candle model.Candle)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when the warmup window has been filled.
	Ready() bool
}

// Value pairs an indicator value with its defined/undefined state.
// Consumers must check Ready before using V: an unfilled warmup window
// is "undefined", never zero.
type Value struct {
	V     float64 `json:"v"`
	Ready bool    `json:"ready"`
}

func reading(ind Indicator) Value {
	return Value{V: ind.Value(), Ready: ind.Ready()}
}
