package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"coinscalp/internal/logger"
	"coinscalp/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

const wsWriteTimeout = 10 * time.Second

// streamMsg is one WebSocket frame of a streamed backtest run.
type streamMsg struct {
	Type     string       `json:"type"` // "trade" | "result" | "error"
	Strategy string       `json:"strategy,omitempty"`
	Trade    *model.Trade `json:"trade,omitempty"`
	Report   interface{}  `json:"report,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// handleStream runs a backtest and pushes every simulated trade to the
// client as it happens, followed by one final result frame. Query
// params mirror the POST body: strategy (repeatable), interval, size.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.mts != nil {
		s.mts.WSClients.Inc()
		defer s.mts.WSClients.Dec()
	}

	q := r.URL.Query()
	req := BacktestRequest{
		Strategies: q["strategy"],
		Interval:   q.Get("interval"),
		Size:       queryInt(r, "size", 0, maxChartSize),
	}

	send := func(msg streamMsg) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[api] ws write error: %v", err)
			return false
		}
		return true
	}

	ctx := logger.WithRequestID(r.Context(), logger.NewRequestID("ws", time.Now()))
	rep, err := s.runBacktests(ctx, req, func(strat string, t model.Trade) {
		tr := t
		send(streamMsg{Type: "trade", Strategy: strat, Trade: &tr})
	})
	if err != nil {
		send(streamMsg{Type: "error", Error: err.Error()})
		return
	}

	send(streamMsg{Type: "result", Report: rep})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
}
