// Package notification delivers run alerts to external channels.
// The backtester sends one summary per completed run and the fetcher
// alerts on persistent chart failures; delivery problems are logged,
// never fatal.
package notification

import (
	"context"
	"fmt"
	"log"

	"coinscalp/internal/report"
)

// Level is the alert severity.
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelCritical Level = "CRITICAL"
)

// Alert is one notification.
type Alert struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier is the interface for all delivery backends.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the process log. Used when no external
// channel is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Multi fans one alert out to several backends, keeping the first error.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, alert Alert) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FromConfig builds the notifier for the configured channels. With
// nothing configured, alerts go to the process log.
func FromConfig(telegramToken, telegramChatID, webhookURL string) Notifier {
	var m Multi
	if telegramToken != "" && telegramChatID != "" {
		m = append(m, NewTelegram(telegramToken, telegramChatID))
	}
	if webhookURL != "" {
		m = append(m, NewWebhook(webhookURL))
	}
	if len(m) == 0 {
		return NewLogNotifier()
	}
	return m
}

// RunSummary formats a completed backtest run as an alert.
func RunSummary(rep *report.RunReport) Alert {
	best := report.Best(rep.Results)
	if best == nil {
		return Alert{
			Level:   LevelInfo,
			Title:   fmt.Sprintf("Backtest %s %s", rep.Market, rep.Interval),
			Message: "No strategies produced results.",
		}
	}
	st := best.Stats
	return Alert{
		Level: LevelInfo,
		Title: fmt.Sprintf("Backtest %s %s (%d candles)", rep.Market, rep.Interval, rep.Candles),
		Message: fmt.Sprintf("Best strategy: %s\nReturn: %.2f%% (%.0f)\nWin rate: %.1f%% over %d trades",
			best.Strategy, st.ReturnPct, st.Profit, st.WinRate, st.TotalTrades),
	}
}

// FetchFailure formats a chart fetch problem as an alert.
func FetchFailure(market, interval string, err error) Alert {
	return Alert{
		Level:   LevelWarning,
		Title:   fmt.Sprintf("Chart fetch failing for %s %s", market, interval),
		Message: err.Error(),
	}
}
