package indicator

import (
	"testing"

	"coinscalp/internal/model"
)

func testConfig() Config {
	// Short warmups so tests exercise the ready transitions quickly.
	return Config{
		RSIPeriod:    3,
		EMAFast:      2,
		EMASlow:      3,
		EMATrend:     4,
		EMABaseline:  5,
		BandPeriod:   3,
		BandStdDev:   2.0,
		VolumePeriod: 2,
		SRWindow:     2,
	}
}

func series(closes ...float64) []model.Candle {
	candles := make([]model.Candle, len(closes))
	for i, p := range closes {
		candles[i] = model.Candle{
			Timestamp: int64(i+1) * 60000,
			Open:      p, High: p + 0.5, Low: p - 0.5, Close: p,
			Volume: 100,
		}
	}
	return candles
}

func TestEngine_SnapshotAlignment(t *testing.T) {
	candles := series(100, 101, 102, 103, 104, 105, 106)
	snaps := NewEngine(testConfig()).ComputeAll(candles)

	if len(snaps) != len(candles) {
		t.Fatalf("snapshot count %d != candle count %d", len(snaps), len(candles))
	}
	for i, s := range snaps {
		if s.Index != i {
			t.Errorf("snapshot %d: Index=%d", i, s.Index)
		}
		if s.Close != candles[i].Close {
			t.Errorf("snapshot %d: Close=%v, want %v", i, s.Close, candles[i].Close)
		}
	}
}

func TestEngine_PrevEMAIsOneStepLookback(t *testing.T) {
	candles := series(100, 102, 104, 103, 105, 107, 106)
	snaps := NewEngine(testConfig()).ComputeAll(candles)

	for i := 1; i < len(snaps); i++ {
		if snaps[i].PrevEMAFast != snaps[i-1].EMAFast {
			t.Errorf("snapshot %d: PrevEMAFast=%+v, want previous EMAFast %+v",
				i, snaps[i].PrevEMAFast, snaps[i-1].EMAFast)
		}
		if snaps[i].PrevEMASlow != snaps[i-1].EMASlow {
			t.Errorf("snapshot %d: PrevEMASlow=%+v, want previous EMASlow %+v",
				i, snaps[i].PrevEMASlow, snaps[i-1].EMASlow)
		}
	}
	if snaps[0].PrevEMAFast.Ready {
		t.Error("first snapshot PrevEMAFast must be unready")
	}
}

func TestEngine_NeutralFallbacks(t *testing.T) {
	candles := series(100, 101)
	snaps := NewEngine(testConfig()).ComputeAll(candles)

	// Volume MA (period 2) is unready at index 0, bands (period 3) at
	// both. The derived ratios must be the neutral values, never zero.
	if snaps[0].VolumeRatio != 1.0 {
		t.Errorf("warmup VolumeRatio=%v, want neutral 1.0", snaps[0].VolumeRatio)
	}
	for i, s := range snaps {
		if s.BandPosition != 0.5 {
			t.Errorf("snapshot %d: warmup BandPosition=%v, want neutral 0.5", i, s.BandPosition)
		}
	}
}

func TestEngine_VolumeRatio(t *testing.T) {
	candles := series(100, 101, 102)
	candles[0].Volume = 10
	candles[1].Volume = 20
	candles[2].Volume = 45

	snaps := NewEngine(testConfig()).ComputeAll(candles)

	// VolMA(2) at index 2 = (20+45)/2 = 32.5; ratio = 45/32.5
	assertClose(t, "VolumeRatio", snaps[2].VolumeRatio, 45.0/32.5, 0.0001)
}

func TestEngine_FlatBandsKeepNeutralPosition(t *testing.T) {
	// Constant closes: upper==lower, so the position denominator is zero
	// and the neutral 0.5 must be kept even when the bands are ready.
	candles := series(250, 250, 250, 250, 250)
	snaps := NewEngine(testConfig()).ComputeAll(candles)

	last := snaps[len(snaps)-1]
	if !last.BandUpper.Ready {
		t.Fatal("bands should be ready")
	}
	if last.BandPosition != 0.5 {
		t.Errorf("flat-band position=%v, want 0.5", last.BandPosition)
	}
}

func TestEngine_IncrementalMatchesBatch(t *testing.T) {
	candles := series(100, 103, 101, 105, 102, 107, 104, 109, 106, 111)

	batch := NewEngine(testConfig()).ComputeAll(candles)

	inc := NewEngine(testConfig())
	for i, c := range candles {
		snap := inc.Process(c)
		if snap != batch[i] {
			t.Errorf("index %d: incremental snapshot differs from batch", i)
		}
	}
}
