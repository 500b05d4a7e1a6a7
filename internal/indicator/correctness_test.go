package indicator

import (
	"math"
	"testing"

	"coinscalp/internal/model"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func candle(close float64) model.Candle {
	return model.Candle{
		Open: close, High: close + 0.5, Low: close - 0.5, Close: close, Volume: 100,
	}
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// RSI Correctness
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period3(t *testing.T) {
	// Hand-calculated trailing-mean RSI(3):
	// Prices: 100, 101, 103, 102, 105
	// Deltas:      +1,  +2,  -1,  +3
	// After 4 prices (deltas +1,+2,-1):
	//   avgGain=(1+2+0)/3=1.0, avgLoss=(0+0+1)/3=0.3333
	//   RS=3, RSI=100-100/4 = 75.0
	// After 5 prices (deltas +2,-1,+3):
	//   avgGain=(2+0+3)/3=1.6667, avgLoss=1/3
	//   RS=5, RSI=100-100/6 = 83.3333

	rsi := NewRSI(3)
	prices := []float64{100, 101, 103, 102, 105}
	expected := []float64{0, 0, 0, 75.0, 83.3333}
	ready := []bool{false, false, false, true, true}

	for i, p := range prices {
		rsi.Update(candle(p))
		if rsi.Ready() != ready[i] {
			t.Errorf("candle %d: Ready()=%v, want %v", i, rsi.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "RSI(3)", rsi.Value(), expected[i], 0.0001)
		}
	}
}

func TestRSI_AllLosses_IsZero(t *testing.T) {
	// 25 strictly decreasing prices (100 down to 76): every delta is a
	// loss, so avgGain=0, RS=0, RSI must be exactly 0.
	rsi := NewRSI(14)
	for p := 100.0; p >= 76.0; p-- {
		rsi.Update(candle(p))
	}
	if !rsi.Ready() {
		t.Fatal("RSI not ready after 25 candles")
	}
	if rsi.Value() != 0 {
		t.Errorf("all-loss RSI: got %v, want exactly 0", rsi.Value())
	}
}

func TestRSI_AllGains_Is100(t *testing.T) {
	// Strictly increasing prices: avgLoss=0, RSI must be exactly 100.
	rsi := NewRSI(14)
	for p := 100.0; p <= 124.0; p++ {
		rsi.Update(candle(p))
	}
	if !rsi.Ready() {
		t.Fatal("RSI not ready after 25 candles")
	}
	if rsi.Value() != 100 {
		t.Errorf("all-gain RSI: got %v, want exactly 100", rsi.Value())
	}
}

func TestRSI_BoundedZeroTo100(t *testing.T) {
	rsi := NewRSI(14)
	// A choppy walk with large swings.
	prices := []float64{100, 108, 95, 103, 97, 110, 104, 99, 112, 101,
		95, 107, 98, 109, 96, 111, 100, 105, 94, 113, 102, 98, 115, 97, 106}
	for i, p := range prices {
		rsi.Update(candle(p))
		if !rsi.Ready() {
			continue
		}
		v := rsi.Value()
		if v < 0 || v > 100 {
			t.Errorf("candle %d: RSI %v out of [0,100]", i, v)
		}
	}
}

func TestRSI_NotReadyWithPeriodPrices(t *testing.T) {
	// period deltas need period+1 prices; with exactly period prices the
	// value is still undefined.
	rsi := NewRSI(14)
	for p := 100.0; p < 114.0; p++ {
		rsi.Update(candle(p))
	}
	if rsi.Ready() {
		t.Error("RSI ready after only period prices; needs period+1")
	}
}

// ────────────────────────────────────────────────────────────
// EMA Correctness
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// EMA(3), multiplier 2/4 = 0.5, seeded with SMA of first 3 closes:
	// Prices: 100, 102, 104 → seed = 102.0
	// Price 106: (106-102)*0.5 + 102 = 104.0
	// Price 108: (108-104)*0.5 + 104 = 106.0

	ema := NewEMA(3)
	prices := []float64{100, 102, 104, 106, 108}
	expected := []float64{0, 0, 102.0, 104.0, 106.0}
	ready := []bool{false, false, true, true, true}

	for i, p := range prices {
		ema.Update(candle(p))
		if ema.Ready() != ready[i] {
			t.Errorf("candle %d: Ready()=%v, want %v", i, ema.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "EMA(3)", ema.Value(), expected[i], 0.0001)
		}
	}
}

func TestEMA_ConstantPrices_StaysFlat(t *testing.T) {
	// A constant series must produce exactly the constant once seeded.
	ema := NewEMA(9)
	for i := 0; i < 50; i++ {
		ema.Update(candle(250))
	}
	assertClose(t, "EMA(9) of constant 250", ema.Value(), 250.0, 1e-9)
}

// ────────────────────────────────────────────────────────────
// Bollinger Correctness
// ────────────────────────────────────────────────────────────

func TestBollinger_Correctness_Period3(t *testing.T) {
	// BB(3, k=2) over 100, 102, 104:
	// mean = 102
	// population variance = ((-2)^2 + 0 + 2^2)/3 = 8/3
	// std = sqrt(8/3) = 1.632993
	// upper = 102 + 2*1.632993 = 105.265986
	// lower = 102 - 2*1.632993 =  98.734014
	// width = (upper-lower)/102 = 0.064039

	bb := NewBollinger(3, 2.0)
	for _, p := range []float64{100, 102, 104} {
		bb.Update(candle(p))
	}
	if !bb.Ready() {
		t.Fatal("BB not ready after period candles")
	}
	upper, middle, lower := bb.Bands()
	assertClose(t, "BB middle", middle, 102.0, 0.0001)
	assertClose(t, "BB upper", upper, 105.265986, 0.0001)
	assertClose(t, "BB lower", lower, 98.734014, 0.0001)
	assertClose(t, "BB width", bb.Width(), 0.064039, 0.0001)
}

func TestBollinger_ConstantPrices_ZeroWidth(t *testing.T) {
	// Zero variance collapses the bands onto the middle.
	bb := NewBollinger(20, 2.0)
	for i := 0; i < 30; i++ {
		bb.Update(candle(250))
	}
	upper, middle, lower := bb.Bands()
	assertClose(t, "flat BB upper", upper, 250.0, 1e-9)
	assertClose(t, "flat BB middle", middle, 250.0, 1e-9)
	assertClose(t, "flat BB lower", lower, 250.0, 1e-9)
	assertClose(t, "flat BB width", bb.Width(), 0.0, 1e-12)
}

func TestBollinger_BandOrdering(t *testing.T) {
	bb := NewBollinger(5, 2.0)
	prices := []float64{100, 103, 98, 105, 101, 99, 104, 102, 97, 106}
	for i, p := range prices {
		bb.Update(candle(p))
		if !bb.Ready() {
			continue
		}
		upper, middle, lower := bb.Bands()
		if !(upper >= middle && middle >= lower) {
			t.Errorf("candle %d: band ordering violated: %v >= %v >= %v", i, upper, middle, lower)
		}
	}
}

// ────────────────────────────────────────────────────────────
// VolumeMA / Support / Resistance
// ────────────────────────────────────────────────────────────

func TestVolumeMA_Correctness(t *testing.T) {
	// VolMA(2) over volumes 10, 20, 30:
	// after 2: (10+20)/2 = 15, after 3: (20+30)/2 = 25
	v := NewVolumeMA(2)
	vols := []float64{10, 20, 30}
	expected := []float64{0, 15, 25}
	ready := []bool{false, true, true}

	for i, vol := range vols {
		c := candle(100)
		c.Volume = vol
		v.Update(c)
		if v.Ready() != ready[i] {
			t.Errorf("candle %d: Ready()=%v, want %v", i, v.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "VolMA(2)", v.Value(), expected[i], 0.0001)
		}
	}
}

func TestSupportResistance_TrailingExtremes(t *testing.T) {
	// Window 3 over lows 99.5, 101.5, 97.5, 104.5 and matching highs:
	// after candle 3: support=min(99.5,101.5,97.5)=97.5, resistance=max=102+0.5
	// after candle 4: support=min(101.5,97.5,104.5)=97.5, resistance=105.5
	sup := NewSupport(3)
	res := NewResistance(3)
	for _, p := range []float64{100, 102, 98} {
		sup.Update(candle(p))
		res.Update(candle(p))
	}
	assertClose(t, "support after 3", sup.Value(), 97.5, 0.0001)
	assertClose(t, "resistance after 3", res.Value(), 102.5, 0.0001)

	sup.Update(candle(105))
	res.Update(candle(105))
	assertClose(t, "support after 4", sup.Value(), 97.5, 0.0001)
	assertClose(t, "resistance after 4", res.Value(), 105.5, 0.0001)
}
