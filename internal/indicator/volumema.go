package indicator

import "coinscalp/internal/model"

// VolumeMA calculates a trailing simple mean of candle volumes.
// Uses a preallocated circular buffer for zero-allocation updates.
type VolumeMA struct {
	period  int
	buf     []float64
	idx     int
	count   int
	sum     float64
	current float64
}

// NewVolumeMA creates a volume moving average with the given period
// (typically 5).
func NewVolumeMA(period int) *VolumeMA {
	return &VolumeMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (v *VolumeMA) Name() string { return "VOL_MA" }

func (v *VolumeMA) Update(candle model.Candle) {
	vol := candle.Volume

	if v.count >= v.period {
		v.sum -= v.buf[v.idx]
	}
	v.buf[v.idx] = vol
	v.sum += vol
	v.idx = (v.idx + 1) % v.period
	v.count++

	if v.count >= v.period {
		v.current = v.sum / float64(v.period)
	}
}

func (v *VolumeMA) Value() float64 { return v.current }
func (v *VolumeMA) Ready() bool    { return v.count >= v.period }
