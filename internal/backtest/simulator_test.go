package backtest

import (
	"math"
	"testing"

	"coinscalp/internal/indicator"
	"coinscalp/internal/model"
	"coinscalp/internal/strategy"
	"coinscalp/internal/trend"
)

// scriptedEvaluator enters and exits at fixed indices, independent of
// the indicator values; the simulator mechanics are what is under test.
type scriptedEvaluator struct {
	enterAt map[int]strategy.Decision
	exitAt  map[int]model.ExitReason
}

func (s *scriptedEvaluator) Name() string { return "scripted" }

func (s *scriptedEvaluator) Evaluate(snap indicator.Snapshot, _ trend.Regime) strategy.Decision {
	if d, ok := s.enterAt[snap.Index]; ok {
		return d
	}
	return strategy.Decision{}
}

func (s *scriptedEvaluator) CheckExit(snap indicator.Snapshot, _ trend.Regime, _ *model.Position) (bool, model.ExitReason) {
	if r, ok := s.exitAt[snap.Index]; ok {
		return true, r
	}
	return false, ""
}

func enter() strategy.Decision { return strategy.Decision{Enter: true, Strength: 1.0} }

func series(closes ...float64) []model.Candle {
	candles := make([]model.Candle, len(closes))
	for i, p := range closes {
		candles[i] = model.Candle{
			Timestamp: int64(i+1) * 60000,
			Open:      p, High: p + 1, Low: p - 1, Close: p,
			Volume: 100,
		}
	}
	return candles
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

// ────────────────────────────────────────────────────────────
// Accounting
// ────────────────────────────────────────────────────────────

func TestSimulator_FeeFreeRoundTrip(t *testing.T) {
	// 100000 capital, full sizing, no fees. Buy at 100, sell at 110:
	// qty = 100000/100 = 1000, proceeds = 110000, profit = 10000, +10%.
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	ev := &scriptedEvaluator{
		enterAt: map[int]strategy.Decision{1: enter()},
		exitAt:  map[int]model.ExitReason{3: model.ExitSignal},
	}

	res, err := sim.Run(series(100, 100, 105, 110, 110), ev)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(res.Trades))
	}
	buy, sell := res.Trades[0], res.Trades[1]
	if buy.Type != model.TradeBuy || sell.Type != model.TradeSell {
		t.Fatalf("trade types %s/%s", buy.Type, sell.Type)
	}
	assertClose(t, "quantity", buy.Quantity, 1000, 1e-9)
	assertClose(t, "profit", sell.Profit, 10000, 1e-9)
	assertClose(t, "final capital", res.FinalCapital, 110000, 1e-9)
	assertClose(t, "return %", res.Stats.ReturnPct, 10.0, 1e-9)
	if sell.Reason != model.ExitSignal {
		t.Errorf("reason=%s, want %s", sell.Reason, model.ExitSignal)
	}
}

func TestSimulator_SymmetricFees(t *testing.T) {
	// Fee on both legs. Entry 100, exit 100:
	// qty      = 100000 * 0.998 / 100   = 998
	// proceeds = 998 * 100 * 0.998     = 99600.4
	// profit   = proceeds - 100*998*0.998 = 0 (same price, symmetric fee)
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0, FeeRate: 0.002}, indicator.DefaultConfig())
	ev := &scriptedEvaluator{
		enterAt: map[int]strategy.Decision{0: enter()},
		exitAt:  map[int]model.ExitReason{2: model.ExitSignal},
	}

	res, err := sim.Run(series(100, 101, 100), ev)
	if err != nil {
		t.Fatal(err)
	}
	sell := res.Trades[1]
	assertClose(t, "quantity", res.Trades[0].Quantity, 998, 1e-9)
	assertClose(t, "flat round-trip profit", sell.Profit, 0, 1e-9)
	assertClose(t, "capital after fees", res.FinalCapital, 998*100*0.998, 1e-6)
}

// ────────────────────────────────────────────────────────────
// State machine
// ────────────────────────────────────────────────────────────

func TestSimulator_TradeAlternation(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), indicator.DefaultConfig())
	ev := &scriptedEvaluator{
		enterAt: map[int]strategy.Decision{0: enter(), 3: enter(), 6: enter()},
		exitAt:  map[int]model.ExitReason{2: model.ExitSignal, 5: model.ExitSignal, 8: model.ExitSignal},
	}

	res, err := sim.Run(series(100, 101, 102, 101, 103, 104, 102, 105, 106, 104), ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 6 {
		t.Fatalf("got %d trades, want 6", len(res.Trades))
	}
	for i, tr := range res.Trades {
		want := model.TradeBuy
		if i%2 == 1 {
			want = model.TradeSell
		}
		if tr.Type != want {
			t.Errorf("trade %d: %s, want %s", i, tr.Type, want)
		}
	}
	if last := res.Trades[len(res.Trades)-1]; last.Type != model.TradeSell {
		t.Errorf("run did not end flat: last trade %s", last.Type)
	}
}

func TestSimulator_OneTransitionPerIndex(t *testing.T) {
	// Enter and exit scripted on the same index: the entry happens, the
	// exit must wait for a later bar.
	sim := NewSimulator(DefaultConfig(), indicator.DefaultConfig())
	ev := &scriptedEvaluator{
		enterAt: map[int]strategy.Decision{1: enter()},
		exitAt:  map[int]model.ExitReason{1: model.ExitSignal, 2: model.ExitSignal},
	}

	res, err := sim.Run(series(100, 101, 102), ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(res.Trades))
	}
	if res.Trades[0].Index != 1 || res.Trades[1].Index != 2 {
		t.Errorf("trade indices %d/%d, want 1/2", res.Trades[0].Index, res.Trades[1].Index)
	}
}

func TestSimulator_ForcedEndClose(t *testing.T) {
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	ev := &scriptedEvaluator{enterAt: map[int]strategy.Decision{0: enter()}}

	res, err := sim.Run(series(100, 102, 104), ev)
	if err != nil {
		t.Fatal(err)
	}
	sell := res.Trades[len(res.Trades)-1]
	if sell.Type != model.TradeSell || sell.Reason != model.ExitEnd {
		t.Fatalf("dangling position close: type=%s reason=%s", sell.Type, sell.Reason)
	}
	if sell.Index != 2 {
		t.Errorf("END close at index %d, want last index 2", sell.Index)
	}
	assertClose(t, "END close capital", res.FinalCapital, 104000, 1e-9)
}

func TestSimulator_ZeroTrades(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), indicator.DefaultConfig())
	ev := &scriptedEvaluator{}

	res, err := sim.Run(series(100, 101, 102), ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("got %d trades, want 0", len(res.Trades))
	}
	if res.FinalCapital != DefaultConfig().InitialCapital {
		t.Errorf("final capital %v, want untouched initial", res.FinalCapital)
	}
	st := res.Stats
	if st.TotalTrades != 0 || st.WinRate != 0 || st.Profit != 0 || st.ReturnPct != 0 {
		t.Errorf("zero-trade stats not all-zero: %+v", st)
	}
}

// ────────────────────────────────────────────────────────────
// Risk exits
// ────────────────────────────────────────────────────────────

func TestSimulator_StopLossFromEntryDecision(t *testing.T) {
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	d := enter()
	d.StopLossPct = 5.0
	ev := &scriptedEvaluator{enterAt: map[int]strategy.Decision{0: d}}

	// Entry at 100; the 94 bar is a 6% drop, past the 5% stop.
	res, err := sim.Run(series(100, 98, 94, 95), ev)
	if err != nil {
		t.Fatal(err)
	}
	sell := res.Trades[1]
	if sell.Reason != model.ExitStopLoss {
		t.Fatalf("reason=%s, want %s", sell.Reason, model.ExitStopLoss)
	}
	if sell.Index != 2 {
		t.Errorf("stop-loss at index %d, want 2", sell.Index)
	}
}

func TestSimulator_TakeProfitFromEntryDecision(t *testing.T) {
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	d := enter()
	d.TakeProfitPct = 3.0
	ev := &scriptedEvaluator{enterAt: map[int]strategy.Decision{0: d}}

	res, err := sim.Run(series(100, 102, 103.5, 104), ev)
	if err != nil {
		t.Fatal(err)
	}
	sell := res.Trades[1]
	if sell.Reason != model.ExitTakeProfit {
		t.Fatalf("reason=%s, want %s", sell.Reason, model.ExitTakeProfit)
	}
	if sell.Index != 2 {
		t.Errorf("take-profit at index %d, want 2", sell.Index)
	}
}

func TestSimulator_TimeLimit(t *testing.T) {
	cfg := Config{InitialCapital: 100000, PositionSize: 1.0, MaxHoldBars: 2}
	sim := NewSimulator(cfg, indicator.DefaultConfig())
	ev := &scriptedEvaluator{enterAt: map[int]strategy.Decision{0: enter()}}

	res, err := sim.Run(series(100, 100, 100, 100, 100), ev)
	if err != nil {
		t.Fatal(err)
	}
	sell := res.Trades[1]
	if sell.Reason != model.ExitTimeLimit {
		t.Fatalf("reason=%s, want %s", sell.Reason, model.ExitTimeLimit)
	}
	if sell.Index != 2 {
		t.Errorf("time-limit exit at index %d, want 2", sell.Index)
	}
}

func TestSimulator_ZeroRiskParamsDisableRiskExits(t *testing.T) {
	// No SL/TP configured anywhere: a 20% drawdown must not trigger a
	// stop, only the forced END close.
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	ev := &scriptedEvaluator{enterAt: map[int]strategy.Decision{0: enter()}}

	res, err := sim.Run(series(100, 90, 80, 85), ev)
	if err != nil {
		t.Fatal(err)
	}
	if sell := res.Trades[1]; sell.Reason != model.ExitEnd {
		t.Errorf("reason=%s, want %s", sell.Reason, model.ExitEnd)
	}
}

// ────────────────────────────────────────────────────────────
// Input handling
// ────────────────────────────────────────────────────────────

func TestSimulator_NewestFirstInputReordered(t *testing.T) {
	candles := series(100, 100, 105, 110, 110)
	reversed := make([]model.Candle, len(candles))
	for i, c := range candles {
		reversed[len(candles)-1-i] = c
	}

	ev := func() *scriptedEvaluator {
		return &scriptedEvaluator{
			enterAt: map[int]strategy.Decision{1: enter()},
			exitAt:  map[int]model.ExitReason{3: model.ExitSignal},
		}
	}
	cfg := Config{InitialCapital: 100000, PositionSize: 1.0}

	asc, err := NewSimulator(cfg, indicator.DefaultConfig()).Run(candles, ev())
	if err != nil {
		t.Fatal(err)
	}
	desc, err := NewSimulator(cfg, indicator.DefaultConfig()).Run(reversed, ev())
	if err != nil {
		t.Fatal(err)
	}
	if asc.FinalCapital != desc.FinalCapital || len(asc.Trades) != len(desc.Trades) {
		t.Errorf("newest-first input diverged: %v/%d vs %v/%d",
			asc.FinalCapital, len(asc.Trades), desc.FinalCapital, len(desc.Trades))
	}
}

func TestSimulator_RejectsMalformedSeries(t *testing.T) {
	candles := series(100, 101, 102)
	candles[2].Timestamp = candles[1].Timestamp // duplicate

	_, err := NewSimulator(DefaultConfig(), indicator.DefaultConfig()).Run(candles, &scriptedEvaluator{})
	if err == nil {
		t.Error("duplicate timestamp accepted")
	}

	candles = series(100, 101, 102)
	candles[1].Close = -5
	candles[1].Low = -6
	_, err = NewSimulator(DefaultConfig(), indicator.DefaultConfig()).Run(candles, &scriptedEvaluator{})
	if err == nil {
		t.Error("negative price accepted")
	}
}

func TestSimulator_FlatSeriesNeverEntersRSIStrategy(t *testing.T) {
	// On a constant series every delta is zero, so the RSI's average
	// loss is zero and the value pins at 100: the oversold entry
	// (RSI < 30) can never fire.
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 250
	}

	ev, err := strategy.New("rsi", strategy.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewSimulator(DefaultConfig(), indicator.DefaultConfig()).Run(series(closes...), ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("flat series produced %d trades", len(res.Trades))
	}
}

func TestSimulator_OnTradeHook(t *testing.T) {
	sim := NewSimulator(Config{InitialCapital: 100000, PositionSize: 1.0}, indicator.DefaultConfig())
	var streamed []model.Trade
	sim.OnTrade(func(tr model.Trade) { streamed = append(streamed, tr) })

	ev := &scriptedEvaluator{
		enterAt: map[int]strategy.Decision{0: enter()},
		exitAt:  map[int]model.ExitReason{2: model.ExitSignal},
	}
	res, err := sim.Run(series(100, 102, 104), ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(streamed) != len(res.Trades) {
		t.Fatalf("hook saw %d trades, result has %d", len(streamed), len(res.Trades))
	}
	for i := range streamed {
		if streamed[i].Index != res.Trades[i].Index || streamed[i].Type != res.Trades[i].Type {
			t.Errorf("hook trade %d differs from recorded trade", i)
		}
	}
}
