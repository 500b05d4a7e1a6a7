// Package model defines the shared market data types: candles, trades,
// and the single simulated position tracked during a backtest run.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Candle represents one OHLCV candle for a single market.
// Timestamp is milliseconds since epoch (Coinone chart convention).
// Prices are quote-currency floats as returned by the exchange.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the candle open time as a UTC time.Time.
func (c *Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Validate checks a single candle for malformed fields.
// A bad candle rejects the whole run; values are never substituted silently.
func (c *Candle) Validate() error {
	if c.Timestamp <= 0 {
		return fmt.Errorf("candle: missing timestamp")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close},
	} {
		if f.v <= 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("candle ts=%d: invalid %s %v", c.Timestamp, f.name, f.v)
		}
	}
	if c.Volume < 0 || math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) {
		return fmt.Errorf("candle ts=%d: invalid volume %v", c.Timestamp, c.Volume)
	}
	if c.High < c.Low {
		return fmt.Errorf("candle ts=%d: high %v below low %v", c.Timestamp, c.High, c.Low)
	}
	return nil
}

// ValidateSeries validates every candle and the strict ascending-timestamp
// ordering the indicator and backtest layers depend on.
func ValidateSeries(candles []Candle) error {
	for i := range candles {
		if err := candles[i].Validate(); err != nil {
			return err
		}
		if i > 0 && candles[i].Timestamp <= candles[i-1].Timestamp {
			return fmt.Errorf("candle %d: timestamp %d not after previous %d",
				i, candles[i].Timestamp, candles[i-1].Timestamp)
		}
	}
	return nil
}

// Ascending returns the candles in oldest-first order. Exchange chart
// endpoints may deliver newest-first; in that case a reversed copy is
// returned, otherwise the input slice is returned unchanged.
func Ascending(candles []Candle) []Candle {
	if len(candles) < 2 || candles[0].Timestamp <= candles[len(candles)-1].Timestamp {
		return candles
	}
	out := make([]Candle, len(candles))
	for i := range candles {
		out[i] = candles[len(candles)-1-i]
	}
	return out
}
