// cmd/server runs the backtest API: REST endpoints for running the
// strategy suite on demand plus a WebSocket trade stream, with
// Prometheus metrics and health probes on a separate port.
//
// Usage:
//
//	go run ./cmd/server
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinscalp/config"
	"coinscalp/internal/api"
	"coinscalp/internal/coinone"
	"coinscalp/internal/logger"
	"coinscalp/internal/metrics"
	redisstore "coinscalp/internal/store/redis"
	sqlitestore "coinscalp/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("coinscalp-server", slog.LevelInfo)
	log.Println("[server] starting...")

	cfg := config.Load()
	strat, err := config.LoadStrategies(cfg.StrategyFile)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	cache, err := redisstore.New(redisstore.CacheConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[server] WARNING: redis init failed: %v (continuing without cache)", err)
		cache = nil
	} else {
		defer cache.Close()
		log.Println("[server] redis cache ready")
	}

	var reader *sqlitestore.Reader
	if r, err := sqlitestore.NewReader(cfg.SQLitePath); err != nil {
		log.Printf("[server] WARNING: sqlite open failed: %v (continuing without local history)", err)
	} else {
		reader = r
		defer reader.Close()
		log.Println("[server] sqlite reader ready")
	}

	switch {
	case cache != nil && reader != nil:
		health.StartLivenessChecker(ctx, cache.Client(), reader.DB(), 15*time.Second)
	case cache != nil:
		health.StartLivenessChecker(ctx, cache.Client(), nil, 15*time.Second)
	case reader != nil:
		health.StartLivenessChecker(ctx, nil, reader.DB(), 15*time.Second)
	}

	client := coinone.NewClient(coinone.Config{})
	srv := api.NewServer(cfg, strat, client, cache, reader, prom)
	srv.Start()

	<-sigCh
	log.Println("[server] shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
}
