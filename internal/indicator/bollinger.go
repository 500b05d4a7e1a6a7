package indicator

import (
	"math"

	"coinscalp/internal/model"
)

// Bollinger calculates Bollinger Bands over a rolling close window:
// middle = trailing simple mean, upper/lower = middle ± k·std where std
// is the population standard deviation (variance divided by period, not
// period-1, matching the strategy suite's hand-rolled math), and
// width = (upper-lower)/middle.
type Bollinger struct {
	period int
	stdDev float64

	buf   []float64 // preallocated circular buffer of closes
	idx   int
	count int
	sum   float64

	upper  float64
	middle float64
	lower  float64
	width  float64
}

// NewBollinger creates Bollinger Bands with the given period and
// standard-deviation multiplier (typically 20, 2.0).
func NewBollinger(period int, stdDev float64) *Bollinger {
	return &Bollinger{
		period: period,
		stdDev: stdDev,
		buf:    make([]float64, period),
	}
}

func (b *Bollinger) Name() string { return "BB" }

func (b *Bollinger) Update(candle model.Candle) {
	price := candle.Close

	if b.count >= b.period {
		b.sum -= b.buf[b.idx]
	}
	b.buf[b.idx] = price
	b.sum += price
	b.idx = (b.idx + 1) % b.period
	b.count++

	if b.count < b.period {
		return
	}

	mean := b.sum / float64(b.period)

	// Variance over the full window. O(period) but the window is small
	// and this keeps batch and incremental results bit-identical.
	variance := 0.0
	for _, p := range b.buf {
		d := p - mean
		variance += d * d
	}
	variance /= float64(b.period)
	std := math.Sqrt(variance)

	b.middle = mean
	b.upper = mean + std*b.stdDev
	b.lower = mean - std*b.stdDev
	if mean != 0 {
		b.width = (b.upper - b.lower) / mean
	} else {
		b.width = 0
	}
}

// Value returns the middle band; use Bands for all three.
func (b *Bollinger) Value() float64 { return b.middle }
func (b *Bollinger) Ready() bool    { return b.count >= b.period }

// Bands returns upper, middle, lower.
func (b *Bollinger) Bands() (upper, middle, lower float64) {
	return b.upper, b.middle, b.lower
}

// Width returns (upper-lower)/middle, 0 until ready.
func (b *Bollinger) Width() float64 { return b.width }
