// Package strategy provides the entry/exit rule evaluators for the
// backtest simulator.
//
// Each evaluator is a pure predicate over one index's indicator snapshot
// (plus the classified regime), returning an entry Decision with a
// confidence strength and the set of triggered conditions. Evaluators
// hold no per-run state; the one-step lookback the EMA crossover rule
// needs is carried inside the snapshot itself.
package strategy

import (
	"fmt"
	"sort"

	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/trend"
)

// Decision is the outcome of evaluating entry rules at one index.
type Decision struct {
	Enter      bool     `json:"enter"`
	Strength   float64  `json:"strength"`
	Conditions []string `json:"conditions,omitempty"`

	// Tier metadata and risk overrides for tiered strategies. Zero
	// values mean "use the simulator's defaults".
	Tier          string  `json:"tier,omitempty"`
	PositionSize  float64 `json:"position_size,omitempty"`
	StopLossPct   float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct float64 `json:"take_profit_pct,omitempty"`
}

// Evaluator is the interface all strategy variants implement.
// Implementations must skip (return a zero Decision / no exit) whenever
// an indicator they consult is not yet Ready; undefined is never zero.
type Evaluator interface {
	// Name returns the unique name of the strategy variant.
	Name() string

	// Evaluate checks the entry rules against one snapshot.
	Evaluate(snap indicator.Snapshot, regime trend.Regime) Decision

	// CheckExit checks the rule-based exit conditions for an open
	// position. Stop-loss/take-profit/time-limit exits owned by the
	// simulator are not reported here unless the variant manages its
	// own (the combined strategy does, to keep its reason precedence).
	CheckExit(snap indicator.Snapshot, regime trend.Regime, pos *model.Position) (bool, model.ExitReason)
}

// builders maps strategy names to constructors over the parameter set.
var builders = map[string]func(Params) Evaluator{
	"mean-reversion": func(p Params) Evaluator { return NewMeanReversion(p.MeanReversion) },
	"rsi":            func(p Params) Evaluator { return NewRSIThreshold(p.RSI) },
	"ema-cross":      func(p Params) Evaluator { return NewEMACross() },
	"combined":       func(p Params) Evaluator { return NewCombined(p.Combined) },
	"uptrend-tiered": func(p Params) Evaluator { return NewUptrendTiered(p.Uptrend) },
	"sideways":       func(p Params) Evaluator { return NewSideways(p.Sideways) },
}

// New builds the named evaluator from the given parameters.
func New(name string, p Params) (Evaluator, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown variant %q", name)
	}
	return b(p), nil
}

// Names returns all registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
