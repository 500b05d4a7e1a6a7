package model

// TradeType distinguishes entries from exits.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// ExitReason records why a position was closed. Only SELL trades carry one.
type ExitReason string

const (
	ExitRSI           ExitReason = "RSI"
	ExitBand          ExitReason = "BB"
	ExitSignal        ExitReason = "SIGNAL"
	ExitStopLoss      ExitReason = "STOP_LOSS"
	ExitTakeProfit    ExitReason = "TAKE_PROFIT"
	ExitTrendReversal ExitReason = "TREND_REVERSAL"
	ExitTimeLimit     ExitReason = "TIME_LIMIT"
	ExitEnd           ExitReason = "END"
)

// Trade is an immutable record emitted on every position open/close.
// Capital is the account capital after the trade settles; Profit is set
// on SELL trades only (net of fees charged on both legs).
type Trade struct {
	Type      TradeType  `json:"type"`
	Index     int        `json:"index"`
	Timestamp int64      `json:"timestamp"`
	Price     float64    `json:"price"`
	Quantity  float64    `json:"quantity"`
	Capital   float64    `json:"capital"`
	Profit    float64    `json:"profit,omitempty"`
	RSI       float64    `json:"rsi,omitempty"`
	Reason    ExitReason `json:"reason,omitempty"`
}

// Position is the sole piece of mutable state during a simulation run.
// At most one position is open at any time; the simulator owns it
// exclusively and resets it to the zero value after each close.
type Position struct {
	Open       bool
	EntryPrice float64
	EntryIndex int
	Quantity   float64

	// Risk parameters fixed at entry (tier overrides or strategy defaults).
	// Zero means the corresponding exit check is disabled.
	StopLossPct   float64
	TakeProfitPct float64
}

// Reset clears the position back to flat.
func (p *Position) Reset() {
	*p = Position{}
}
