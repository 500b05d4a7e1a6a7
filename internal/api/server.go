// Package api exposes the backtest service over HTTP: REST endpoints
// for running backtests and listing strategies, plus a WebSocket
// endpoint that streams a run's trades as they are simulated.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"coinscalp/config"
	"coinscalp/internal/backtest"
	"coinscalp/internal/coinone"
	"coinscalp/internal/logger"
	"coinscalp/internal/metrics"
	"coinscalp/internal/model"
	"coinscalp/internal/report"
	"coinscalp/internal/store/redis"
	"coinscalp/internal/store/sqlite"
	"coinscalp/internal/strategy"
)

const maxChartSize = 500

// Server is the REST + WebSocket frontend for the backtester.
type Server struct {
	cfg    *config.Config
	strat  *config.Strategies
	client *coinone.Client
	cache  *redis.Cache   // optional, nil disables the chart cache
	reader *sqlite.Reader // optional, nil disables local history
	mts    *metrics.Metrics

	srv *http.Server
}

// NewServer wires the HTTP routes. cache and reader may be nil; the
// server then always goes to the exchange for candles.
func NewServer(cfg *config.Config, strat *config.Strategies, client *coinone.Client, cache *redis.Cache, reader *sqlite.Reader, mts *metrics.Metrics) *Server {
	s := &Server{
		cfg:    cfg,
		strat:  strat,
		client: client,
		cache:  cache,
		reader: reader,
		mts:    mts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/strategies", s.handleStrategies)
	mux.HandleFunc("/api/v1/candles", s.handleCandles)
	mux.HandleFunc("/api/v1/backtest", s.handleBacktest)
	mux.HandleFunc("/api/v1/backtest/stream", s.handleStream)
	mux.HandleFunc("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}
	return s
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[api] server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[api] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": strategy.Names(),
	})
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = s.cfg.Interval
	}
	size := queryInt(r, "size", 200, maxChartSize)

	candles, err := s.loadCandles(r.Context(), interval, size)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

// BacktestRequest is the POST /api/v1/backtest body. Empty strategies
// means "run all registered".
type BacktestRequest struct {
	Strategies []string `json:"strategies"`
	Interval   string   `json:"interval"`
	Size       int      `json:"size"`

	InitialCapital float64 `json:"initial_capital"`
	PositionSize   float64 `json:"position_size"`
	FeeRate        float64 `json:"fee_rate"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("use POST"))
		return
	}

	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	ctx := logger.WithRequestID(r.Context(), logger.NewRequestID("bt", time.Now()))
	rep, err := s.runBacktests(ctx, req, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	redisOK := false
	if s.cache != nil {
		redisOK = s.cache.Client().Ping(r.Context()).Err() == nil
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"market": s.cfg.Market(),
		"redis":  redisOK,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// runBacktests loads candles, runs every requested strategy, and
// assembles the run report. onTrade, when non-nil, receives each trade
// of each run tagged with its strategy name.
func (s *Server) runBacktests(ctx context.Context, req BacktestRequest, onTrade func(string, model.Trade)) (*report.RunReport, error) {
	interval := req.Interval
	if interval == "" {
		interval = s.cfg.Interval
	}
	size := req.Size
	if size <= 0 || size > maxChartSize {
		size = maxChartSize
	}
	names := req.Strategies
	if len(names) == 0 {
		names = strategy.Names()
	}

	candles, err := s.loadCandles(ctx, interval, size)
	if err != nil {
		return nil, err
	}

	btCfg := s.strat.Backtest
	if req.InitialCapital > 0 {
		btCfg.InitialCapital = req.InitialCapital
	}
	if req.PositionSize > 0 && req.PositionSize <= 1 {
		btCfg.PositionSize = req.PositionSize
	}
	if req.FeeRate > 0 && req.FeeRate < 1 {
		btCfg.FeeRate = req.FeeRate
	}

	results := make([]*backtest.Result, 0, len(names))
	for _, name := range names {
		ev, err := strategy.New(name, s.strat.Params)
		if err != nil {
			return nil, err
		}

		sim := backtest.NewSimulator(btCfg, s.strat.Indicators)
		if onTrade != nil {
			sim.OnTrade(func(t model.Trade) { onTrade(name, t) })
		}

		start := time.Now()
		res, err := sim.Run(candles, ev)
		if err != nil {
			return nil, err
		}
		if s.mts != nil {
			s.mts.BacktestsTotal.WithLabelValues(name).Inc()
			s.mts.BacktestDur.Observe(time.Since(start).Seconds())
			s.mts.TradesSimulated.Add(float64(len(res.Trades)))
		}
		log.Printf("[api] backtest %s: %d trades, return %.2f%% request_id=%s",
			name, res.Stats.TotalTrades, res.Stats.ReturnPct, logger.RequestID(ctx))
		results = append(results, res)
	}

	return &report.RunReport{
		Market:      s.cfg.Market(),
		Interval:    interval,
		Candles:     len(candles),
		GeneratedAt: time.Now().UTC(),
		Config:      btCfg,
		Results:     results,
	}, nil
}

// loadCandles resolves the candle series for a run: Redis cache first,
// then the exchange chart API, writing fresh batches back to the cache.
func (s *Server) loadCandles(ctx context.Context, interval string, size int) ([]model.Candle, error) {
	market := s.cfg.Market()

	if s.cache != nil {
		cached, err := s.cache.GetChart(ctx, market, interval)
		if err != nil {
			log.Printf("[api] chart cache read failed: %v", err)
		} else if len(cached) >= size {
			if s.mts != nil {
				s.mts.ChartCacheHits.Inc()
			}
			return cached[len(cached)-size:], nil
		}
	}

	candles, err := s.client.Chart(ctx, s.cfg.QuoteCurrency, s.cfg.TargetCurrency, interval, size)
	if err != nil {
		if s.mts != nil {
			s.mts.FetchErrors.Inc()
		}
		// Exchange unreachable: fall back to local history.
		if s.reader != nil {
			stored, rerr := s.reader.ReadCandles(market, interval, 0)
			if rerr == nil && len(stored) > 0 {
				log.Printf("[api] chart fetch failed (%v), serving %d stored candles", err, len(stored))
				if len(stored) > size {
					stored = stored[len(stored)-size:]
				}
				return stored, nil
			}
		}
		return nil, err
	}
	if s.mts != nil {
		s.mts.CandlesFetched.Add(float64(len(candles)))
	}

	if s.cache != nil {
		if err := s.cache.SetChart(ctx, market, interval, candles); err != nil {
			log.Printf("[api] chart cache write failed: %v", err)
		}
	}
	return candles, nil
}

func queryInt(r *http.Request, key string, def, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > max {
		return def
	}
	return n
}
