package indicator

import "coinscalp/internal/model"

// RSI calculates the Relative Strength Index using a simple trailing mean
// of gains and losses over the last period deltas. This intentionally
// differs from Wilder's exponential smoothing: the Coinone strategy suite
// was tuned against the trailing-mean variant and the two diverge on real
// data, so the trailing mean must be preserved for signal compatibility.
// Update is O(1) per candle via gain/loss ring buffers.
type RSI struct {
	period    int
	count     int
	prevClose float64

	gains  []float64 // trailing period gains, circular
	losses []float64
	idx    int
	sumG   float64
	sumL   float64

	current float64
}

// NewRSI creates a new RSI indicator with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  make([]float64, period),
		losses: make([]float64, period),
	}
}

func (r *RSI) Name() string { return "RSI" }

func (r *RSI) Update(candle model.Candle) {
	price := candle.Close
	r.count++

	if r.count == 1 {
		// First candle: just record price, no delta yet
		r.prevClose = price
		return
	}

	delta := price - r.prevClose
	r.prevClose = price

	gain := 0.0
	loss := 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	// Overwrite the oldest delta in the window
	r.sumG -= r.gains[r.idx]
	r.sumL -= r.losses[r.idx]
	r.gains[r.idx] = gain
	r.losses[r.idx] = loss
	r.sumG += gain
	r.sumL += loss
	r.idx = (r.idx + 1) % r.period

	if !r.Ready() {
		return
	}

	avgGain := r.sumG / float64(r.period)
	avgLoss := r.sumL / float64(r.period)
	if avgLoss == 0 {
		r.current = 100.0
	} else {
		rs := avgGain / avgLoss
		r.current = 100.0 - (100.0 / (1.0 + rs))
	}
}

func (r *RSI) Value() float64 { return r.current }

// Ready requires period deltas, i.e. period+1 raw prices.
func (r *RSI) Ready() bool { return r.count > r.period }

// Reset clears the RSI state for reuse.
func (r *RSI) Reset() {
	r.count = 0
	r.prevClose = 0
	r.idx = 0
	r.sumG = 0
	r.sumL = 0
	r.current = 0
	for i := range r.gains {
		r.gains[i] = 0
		r.losses[i] = 0
	}
}
