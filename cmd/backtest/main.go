// cmd/backtest runs the strategy suite over historical candles and
// prints the cross-strategy comparison table.
//
// Usage:
//
//	go run ./cmd/backtest --strategy=all --size=500
//	go run ./cmd/backtest --strategy=combined,sideways --source=db --out=report.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"coinscalp/config"
	"coinscalp/internal/backtest"
	"coinscalp/internal/coinone"
	"coinscalp/internal/model"
	"coinscalp/internal/notification"
	"coinscalp/internal/report"
	sqlitestore "coinscalp/internal/store/sqlite"
	"coinscalp/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	stratFlag := flag.String("strategy", "all", "Comma-separated strategy names, or 'all'")
	interval := flag.String("interval", "", "Chart interval (default: CHART_INTERVAL env, 5m)")
	size := flag.Int("size", 500, "Number of candles to backtest over")
	source := flag.String("source", "api", "Candle source: api (exchange) or db (local SQLite)")
	paramsFile := flag.String("params", "", "Strategy parameter YAML (default: STRATEGY_FILE env)")
	outFile := flag.String("out", "", "Write full trade detail as JSON to this path")
	flag.Parse()

	cfg := config.Load()
	if *interval == "" {
		*interval = cfg.Interval
	}
	if *paramsFile == "" {
		*paramsFile = cfg.StrategyFile
	}

	strat, err := config.LoadStrategies(*paramsFile)
	if err != nil {
		log.Fatalf("[backtest] %v", err)
	}

	names := parseStrategies(*stratFlag)
	if len(names) == 0 {
		names = strategy.Names()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	candles, err := loadCandles(ctx, cfg, *source, *interval, *size)
	if err != nil {
		log.Fatalf("[backtest] candle load failed: %v", err)
	}
	log.Printf("[backtest] %s %s: %d candles loaded from %s", cfg.Market(), *interval, len(candles), *source)

	results := make([]*backtest.Result, 0, len(names))
	for _, name := range names {
		ev, err := strategy.New(name, strat.Params)
		if err != nil {
			log.Fatalf("[backtest] %v", err)
		}
		sim := backtest.NewSimulator(strat.Backtest, strat.Indicators)
		res, err := sim.Run(candles, ev)
		if err != nil {
			log.Fatalf("[backtest] %v", err)
		}
		results = append(results, res)
	}

	rep := &report.RunReport{
		Market:      cfg.Market(),
		Interval:    *interval,
		Candles:     len(candles),
		GeneratedAt: time.Now().UTC(),
		Config:      strat.Backtest,
		Results:     report.Sorted(results),
	}
	report.WriteTable(os.Stdout, rep)

	if *outFile != "" {
		if err := report.Save(*outFile, rep); err != nil {
			log.Fatalf("[backtest] report save failed: %v", err)
		}
		fmt.Printf("Full report written to %s\n", *outFile)
	}

	notifier := notification.FromConfig(cfg.TelegramToken, cfg.TelegramChatID, cfg.WebhookURL)
	if err := notifier.Send(ctx, notification.RunSummary(rep)); err != nil {
		log.Printf("[backtest] summary alert failed: %v", err)
	}
}

func loadCandles(ctx context.Context, cfg *config.Config, source, interval string, size int) ([]model.Candle, error) {
	switch source {
	case "db":
		reader, err := sqlitestore.NewReader(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		candles, err := reader.ReadCandles(cfg.Market(), interval, 0)
		if err != nil {
			return nil, err
		}
		if len(candles) > size {
			candles = candles[len(candles)-size:]
		}
		return candles, nil
	case "api":
		client := coinone.NewClient(coinone.Config{})
		return client.Chart(ctx, cfg.QuoteCurrency, cfg.TargetCurrency, interval, size)
	default:
		return nil, fmt.Errorf("unknown source %q (want api or db)", source)
	}
}

func parseStrategies(s string) []string {
	if strings.EqualFold(s, "all") {
		return nil
	}
	var names []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
