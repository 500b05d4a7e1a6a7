// cmd/fetch pulls candle history from the exchange chart API into the
// local SQLite store and the Redis chart cache. Run once for a single
// sync, or with --every for a continuous poll loop.
//
// Usage:
//
//	go run ./cmd/fetch --size=500
//	go run ./cmd/fetch --every=5m
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"coinscalp/config"
	"coinscalp/internal/coinone"
	"coinscalp/internal/metrics"
	"coinscalp/internal/model"
	"coinscalp/internal/notification"
	redisstore "coinscalp/internal/store/redis"
	sqlitestore "coinscalp/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[fetch] starting...")

	size := flag.Int("size", 500, "Candles per fetch")
	interval := flag.String("interval", "", "Chart interval (default: CHART_INTERVAL env, 5m)")
	every := flag.Duration("every", 0, "Poll interval; 0 fetches once and exits")
	flag.Parse()

	cfg := config.Load()
	if *interval == "" {
		*interval = cfg.Interval
	}

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	writer, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[fetch] sqlite init failed: %v", err)
	}
	defer writer.Close()
	log.Println("[fetch] sqlite writer ready")

	cache, err := redisstore.New(redisstore.CacheConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[fetch] WARNING: redis init failed: %v (continuing without cache)", err)
		cache = nil
	} else {
		defer cache.Close()
		log.Println("[fetch] redis cache ready")
	}

	if cache != nil {
		health.StartLivenessChecker(ctx, cache.Client(), writer.DB(), 15*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, writer.DB(), 15*time.Second)
	}

	client := coinone.NewClient(coinone.Config{})
	notifier := notification.FromConfig(cfg.TelegramToken, cfg.TelegramChatID, cfg.WebhookURL)

	// Alert once per failure streak, at the third consecutive miss.
	const alertAfterFailures = 3
	failures := 0

	sync := func() {
		fetchCtx, fetchCancel := context.WithTimeout(ctx, 30*time.Second)
		defer fetchCancel()

		candles, err := client.Chart(fetchCtx, cfg.QuoteCurrency, cfg.TargetCurrency, *interval, *size)
		if err != nil {
			prom.FetchErrors.Inc()
			log.Printf("[fetch] chart fetch failed: %v", err)
			failures++
			if failures == alertAfterFailures {
				if nerr := notifier.Send(fetchCtx, notification.FetchFailure(cfg.Market(), *interval, err)); nerr != nil {
					log.Printf("[fetch] alert delivery failed: %v", nerr)
				}
			}
			return
		}
		failures = 0
		prom.CandlesFetched.Add(float64(len(candles)))

		stored := store(writer, cfg.Market(), *interval, candles)
		if cache != nil {
			if err := cache.SetChart(fetchCtx, cfg.Market(), *interval, candles); err != nil {
				log.Printf("[fetch] cache write failed: %v", err)
			}
		}
		log.Printf("[fetch] %s %s: %d candles fetched, %d new stored",
			cfg.Market(), *interval, len(candles), stored)
	}

	sync()
	if *every <= 0 {
		metricsSrv.Stop(context.Background())
		return
	}

	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[fetch] shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			metricsSrv.Stop(shutdownCtx)
			shutdownCancel()
			return
		case <-ticker.C:
			sync()
		}
	}
}

// store inserts only candles newer than the last persisted timestamp
// and returns how many were written.
func store(writer *sqlitestore.Writer, market, interval string, candles []model.Candle) int {
	lastTS, err := writer.LastTimestamp(market, interval)
	if err != nil {
		log.Printf("[fetch] last timestamp read failed: %v", err)
	}

	fresh := candles
	if lastTS > 0 {
		fresh = nil
		for _, c := range candles {
			if c.Timestamp > lastTS {
				fresh = append(fresh, c)
			}
		}
	}
	if len(fresh) == 0 {
		return 0
	}
	if err := writer.InsertCandles(market, interval, fresh); err != nil {
		log.Printf("[fetch] sqlite insert failed: %v", err)
		return 0
	}
	return len(fresh)
}
