package indicator

import "coinscalp/internal/model"

// Support tracks the trailing minimum of candle lows over a window.
type Support struct {
	window  int
	buf     []float64
	idx     int
	count   int
	current float64
}

// NewSupport creates a rolling-low support level over the given window
// (typically 20).
func NewSupport(window int) *Support {
	return &Support{
		window: window,
		buf:    make([]float64, window),
	}
}

func (s *Support) Name() string { return "SUPPORT" }

func (s *Support) Update(candle model.Candle) {
	s.buf[s.idx] = candle.Low
	s.idx = (s.idx + 1) % s.window
	s.count++

	if s.count < s.window {
		return
	}
	// Rescan the window. O(window), fine for the lookbacks used here.
	min := s.buf[0]
	for _, v := range s.buf[1:] {
		if v < min {
			min = v
		}
	}
	s.current = min
}

func (s *Support) Value() float64 { return s.current }
func (s *Support) Ready() bool    { return s.count >= s.window }

// Resistance tracks the trailing maximum of candle highs over a window.
type Resistance struct {
	window  int
	buf     []float64
	idx     int
	count   int
	current float64
}

// NewResistance creates a rolling-high resistance level over the given
// window (typically 20).
func NewResistance(window int) *Resistance {
	return &Resistance{
		window: window,
		buf:    make([]float64, window),
	}
}

func (r *Resistance) Name() string { return "RESISTANCE" }

func (r *Resistance) Update(candle model.Candle) {
	r.buf[r.idx] = candle.High
	r.idx = (r.idx + 1) % r.window
	r.count++

	if r.count < r.window {
		return
	}
	max := r.buf[0]
	for _, v := range r.buf[1:] {
		if v > max {
			max = v
		}
	}
	r.current = max
}

func (r *Resistance) Value() float64 { return r.current }
func (r *Resistance) Ready() bool    { return r.count >= r.window }
