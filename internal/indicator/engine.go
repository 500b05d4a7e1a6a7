package indicator

import "coinscalp/internal/model"

// Config specifies the warmup periods for the full indicator set.
type Config struct {
	RSIPeriod    int     `yaml:"rsi_period"`
	EMAFast      int     `yaml:"ema_fast"`
	EMASlow      int     `yaml:"ema_slow"`
	EMATrend     int     `yaml:"ema_trend"`
	EMABaseline  int     `yaml:"ema_baseline"`
	BandPeriod   int     `yaml:"band_period"`
	BandStdDev   float64 `yaml:"band_std_dev"`
	VolumePeriod int     `yaml:"volume_period"`
	SRWindow     int     `yaml:"sr_window"`
}

// DefaultConfig returns the periods the strategy suite was tuned with:
// RSI(14), EMA(9/21/50/200), Bollinger(20, 2.0), volume MA(5), S/R(20).
func DefaultConfig() Config {
	return Config{
		RSIPeriod:    14,
		EMAFast:      9,
		EMASlow:      21,
		EMATrend:     50,
		EMABaseline:  200,
		BandPeriod:   20,
		BandStdDev:   2.0,
		VolumePeriod: 5,
		SRWindow:     20,
	}
}

// Snapshot holds every indicator value for one candle index, aligned 1:1
// with the candle sequence. Values carry their own Ready flag; consumers
// must never treat an unready value as zero.
//
// PrevEMAFast/PrevEMASlow are the previous index's values, the one-step
// lookback the EMA crossover rule needs.
type Snapshot struct {
	Index  int
	Close  float64
	Volume float64

	RSI         Value
	EMAFast     Value // EMA(9)
	EMASlow     Value // EMA(21)
	EMATrend    Value // EMA(50)
	EMABaseline Value // EMA(200)
	PrevEMAFast Value
	PrevEMASlow Value

	BandUpper  Value
	BandMiddle Value
	BandLower  Value
	BandWidth  Value

	Support    Value
	Resistance Value
	VolumeMA   Value

	// VolumeRatio is volume / volumeMA, defined as the neutral 1.0 when
	// the MA is unready or zero.
	VolumeRatio float64

	// BandPosition is (close-lower)/(upper-lower) in [0,1]-ish, defined
	// as the neutral 0.5 when the bands are unready or flat.
	BandPosition float64
}

// Engine computes the full indicator set over a candle sequence.
// Designed for single-goroutine usage, no locks needed.
type Engine struct {
	cfg Config

	rsi         *RSI
	emaFast     *EMA
	emaSlow     *EMA
	emaTrend    *EMA
	emaBaseline *EMA
	bands       *Bollinger
	volMA       *VolumeMA
	support     *Support
	resistance  *Resistance

	count int
}

// NewEngine creates an indicator engine with the given periods.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:         cfg,
		rsi:         NewRSI(cfg.RSIPeriod),
		emaFast:     NewEMA(cfg.EMAFast),
		emaSlow:     NewEMA(cfg.EMASlow),
		emaTrend:    NewEMA(cfg.EMATrend),
		emaBaseline: NewEMA(cfg.EMABaseline),
		bands:       NewBollinger(cfg.BandPeriod, cfg.BandStdDev),
		volMA:       NewVolumeMA(cfg.VolumePeriod),
		support:     NewSupport(cfg.SRWindow),
		resistance:  NewResistance(cfg.SRWindow),
	}
}

// Process feeds one candle to every indicator and returns the aligned
// snapshot for that index. Candles must arrive strictly oldest-first.
func (e *Engine) Process(candle model.Candle) Snapshot {
	prevFast := reading(e.emaFast)
	prevSlow := reading(e.emaSlow)

	e.rsi.Update(candle)
	e.emaFast.Update(candle)
	e.emaSlow.Update(candle)
	e.emaTrend.Update(candle)
	e.emaBaseline.Update(candle)
	e.bands.Update(candle)
	e.volMA.Update(candle)
	e.support.Update(candle)
	e.resistance.Update(candle)

	upper, middle, lower := e.bands.Bands()
	bandsReady := e.bands.Ready()

	snap := Snapshot{
		Index:  e.count,
		Close:  candle.Close,
		Volume: candle.Volume,

		RSI:         reading(e.rsi),
		EMAFast:     reading(e.emaFast),
		EMASlow:     reading(e.emaSlow),
		EMATrend:    reading(e.emaTrend),
		EMABaseline: reading(e.emaBaseline),
		PrevEMAFast: prevFast,
		PrevEMASlow: prevSlow,

		BandUpper:  Value{V: upper, Ready: bandsReady},
		BandMiddle: Value{V: middle, Ready: bandsReady},
		BandLower:  Value{V: lower, Ready: bandsReady},
		BandWidth:  Value{V: e.bands.Width(), Ready: bandsReady},

		Support:    reading(e.support),
		Resistance: reading(e.resistance),
		VolumeMA:   reading(e.volMA),
	}

	snap.VolumeRatio = 1.0
	if snap.VolumeMA.Ready && snap.VolumeMA.V > 0 {
		snap.VolumeRatio = candle.Volume / snap.VolumeMA.V
	}

	snap.BandPosition = 0.5
	if bandsReady && upper-lower > 0 {
		snap.BandPosition = (candle.Close - lower) / (upper - lower)
	}

	e.count++
	return snap
}

// ComputeAll runs a single batch pass over an oldest-first candle
// sequence and returns one snapshot per index. The engine must be fresh.
func (e *Engine) ComputeAll(candles []model.Candle) []Snapshot {
	snaps := make([]Snapshot, len(candles))
	for i, c := range candles {
		snaps[i] = e.Process(c)
	}
	return snaps
}
