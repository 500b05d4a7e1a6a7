// Package backtest drives the single-position simulation of a strategy
// over a historical candle sequence and reduces the resulting trades
// into summary statistics.
package backtest

import (
	"fmt"

	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/strategy"
	"coinscalp/internal/trend"
)

// Config holds the account-level simulation parameters. Risk fields are
// the defaults used when a strategy's entry decision carries no tier
// overrides; zero disables the corresponding exit check.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital"`
	PositionSize   float64 `yaml:"position_size"` // fraction of capital per entry
	FeeRate        float64 `yaml:"fee_rate"`      // charged on both legs
	StopLossPct    float64 `yaml:"stop_loss_pct"`
	TakeProfitPct  float64 `yaml:"take_profit_pct"`
	MaxHoldBars    int     `yaml:"max_hold_bars"`
}

// DefaultConfig returns the account defaults: 100k KRW, 95% sizing,
// 0.02% spot fee per leg.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100000,
		PositionSize:   0.95,
		FeeRate:        0.0002,
	}
}

// Result is the read-only outcome of one backtest run.
type Result struct {
	Strategy     string        `json:"strategy"`
	Trades       []model.Trade `json:"trades"`
	FinalCapital float64       `json:"final_capital"`
	Stats        Stats         `json:"stats"`
}

// Simulator walks a candle sequence once through one strategy
// evaluator, tracking the single simulated position. Each Run owns its
// position and trade list exclusively; a Simulator may be reused for
// sequential runs but is not safe for concurrent ones.
type Simulator struct {
	cfg     Config
	indCfg  indicator.Config
	onTrade func(model.Trade)
}

// NewSimulator creates a simulator with the given account and indicator
// configuration.
func NewSimulator(cfg Config, indCfg indicator.Config) *Simulator {
	return &Simulator{cfg: cfg, indCfg: indCfg}
}

// OnTrade registers a hook invoked for every recorded trade, in order.
// Used by the API server to stream a run's trades over WebSocket.
func (s *Simulator) OnTrade(fn func(model.Trade)) {
	s.onTrade = fn
}

// Run simulates the evaluator over the candle sequence. Input may be
// newest-first (it is reordered); malformed candles reject the run.
// Decisions at index i consult only indicators computed from indices
// <= i, and every run ends flat.
func (s *Simulator) Run(candles []model.Candle, ev strategy.Evaluator) (*Result, error) {
	candles = model.Ascending(candles)
	if err := model.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("backtest %s: %w", ev.Name(), err)
	}

	snaps := indicator.NewEngine(s.indCfg).ComputeAll(candles)

	capital := s.cfg.InitialCapital
	var pos model.Position
	var trades []model.Trade

	record := func(t model.Trade) {
		trades = append(trades, t)
		if s.onTrade != nil {
			s.onTrade(t)
		}
	}

	for i := range candles {
		snap := snaps[i]
		regime, _ := trend.FromSnapshot(snap)
		price := snap.Close

		if !pos.Open {
			d := ev.Evaluate(snap, regime)
			if !d.Enter {
				continue
			}

			sizeFrac := s.cfg.PositionSize
			if d.PositionSize > 0 {
				sizeFrac = d.PositionSize
			}
			qty := capital * sizeFrac * (1 - s.cfg.FeeRate) / price

			pos = model.Position{
				Open:          true,
				EntryPrice:    price,
				EntryIndex:    i,
				Quantity:      qty,
				StopLossPct:   pickRisk(d.StopLossPct, s.cfg.StopLossPct),
				TakeProfitPct: pickRisk(d.TakeProfitPct, s.cfg.TakeProfitPct),
			}
			record(model.Trade{
				Type:      model.TradeBuy,
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     price,
				Quantity:  qty,
				Capital:   capital,
				RSI:       readyRSI(snap),
			})
			continue
		}

		exit, reason := s.checkRiskExits(&pos, price, i)
		if !exit {
			exit, reason = ev.CheckExit(snap, regime, &pos)
		}
		if !exit {
			continue
		}
		capital = s.close(&pos, record, i, candles[i].Timestamp, price, snap, reason)
	}

	// Every run ends flat: force-close a dangling position at the last
	// candle.
	if pos.Open {
		last := len(candles) - 1
		capital = s.close(&pos, record, last, candles[last].Timestamp, candles[last].Close, snapAt(snaps, last), model.ExitEnd)
	}

	return &Result{
		Strategy:     ev.Name(),
		Trades:       trades,
		FinalCapital: capital,
		Stats:        Summarize(trades, s.cfg.InitialCapital),
	}, nil
}

// checkRiskExits applies the simulator-owned exits: stop-loss,
// take-profit, then time limit. Strategies that manage their own
// stop-loss (the combined variant) enter with zero risk params so these
// never preempt the evaluator's reason precedence.
func (s *Simulator) checkRiskExits(pos *model.Position, price float64, index int) (bool, model.ExitReason) {
	if pos.StopLossPct > 0 && price <= pos.EntryPrice*(1-pos.StopLossPct/100) {
		return true, model.ExitStopLoss
	}
	if pos.TakeProfitPct > 0 && price >= pos.EntryPrice*(1+pos.TakeProfitPct/100) {
		return true, model.ExitTakeProfit
	}
	if s.cfg.MaxHoldBars > 0 && index-pos.EntryIndex >= s.cfg.MaxHoldBars {
		return true, model.ExitTimeLimit
	}
	return false, ""
}

// close settles the position at price, records the SELL, and returns
// the new capital. Fees are charged symmetrically: proceeds are reduced
// by the fee and profit is measured against the fee-adjusted entry.
func (s *Simulator) close(pos *model.Position, record func(model.Trade), index int, ts int64, price float64, snap indicator.Snapshot, reason model.ExitReason) float64 {
	gross := pos.Quantity * price
	capital := gross * (1 - s.cfg.FeeRate)
	profit := capital - pos.EntryPrice*pos.Quantity*(1-s.cfg.FeeRate)

	record(model.Trade{
		Type:      model.TradeSell,
		Index:     index,
		Timestamp: ts,
		Price:     price,
		Quantity:  pos.Quantity,
		Capital:   capital,
		Profit:    profit,
		RSI:       readyRSI(snap),
		Reason:    reason,
	})
	pos.Reset()
	return capital
}

func pickRisk(override, fallback float64) float64 {
	if override > 0 {
		return override
	}
	return fallback
}

func readyRSI(snap indicator.Snapshot) float64 {
	if snap.RSI.Ready {
		return snap.RSI.V
	}
	return 0
}

func snapAt(snaps []indicator.Snapshot, i int) indicator.Snapshot {
	if i >= 0 && i < len(snaps) {
		return snaps[i]
	}
	return indicator.Snapshot{}
}
