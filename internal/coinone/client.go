// Package coinone is a minimal client for the Coinone public chart API.
// It fetches OHLCV candles and normalizes them into model.Candle values
// ordered oldest-first, the invariant the rest of the system assumes.
//
// Only the public (unauthenticated) chart endpoint is covered; order
// placement and the signed private API are deliberately out of scope.
package coinone

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coinscalp/internal/model"
)

const defaultBaseURL = "https://api.coinone.co.kr"

// maxChartSize is the most candles the chart endpoint returns per call.
const maxChartSize = 500

// Config configures the chart client.
type Config struct {
	BaseURL string        // default: https://api.coinone.co.kr
	Timeout time.Duration // default: 10s
}

// Client fetches chart data over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chart client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// chartResponse mirrors the public chart payload. Numeric fields arrive
// as strings.
type chartResponse struct {
	Result    string      `json:"result"`
	ErrorCode string      `json:"error_code"`
	ErrorMsg  string      `json:"error_message"`
	Chart     []rawCandle `json:"chart"`
}

type rawCandle struct {
	Timestamp    int64  `json:"timestamp"`
	Open         string `json:"open"`
	High         string `json:"high"`
	Low          string `json:"low"`
	Close        string `json:"close"`
	TargetVolume string `json:"target_volume"`
}

// Chart fetches up to size candles for target/quote (e.g. "XRP", "KRW")
// at the given interval ("1m", "5m", "15m", "1h", ...). Candles are
// returned oldest-first and validated; any malformed candle fails the
// whole fetch.
func (c *Client) Chart(ctx context.Context, quote, target, interval string, size int) ([]model.Candle, error) {
	if size <= 0 || size > maxChartSize {
		size = maxChartSize
	}

	u := fmt.Sprintf("%s/public/v2/chart/%s/%s?%s", c.baseURL,
		url.PathEscape(quote), url.PathEscape(target),
		url.Values{
			"interval": {interval},
			"size":     {strconv.Itoa(size)},
		}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("coinone chart request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coinone chart fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("coinone chart read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coinone chart: HTTP %d: %s", resp.StatusCode, body)
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("coinone chart decode: %w", err)
	}
	if cr.Result != "success" {
		return nil, fmt.Errorf("coinone chart: %s (code %s)", cr.ErrorMsg, cr.ErrorCode)
	}

	return parseChart(cr.Chart)
}

// parseChart converts raw string-typed candles into validated
// model.Candle values ordered oldest-first.
func parseChart(raw []rawCandle) ([]model.Candle, error) {
	candles := make([]model.Candle, 0, len(raw))
	for i, rc := range raw {
		c := model.Candle{Timestamp: rc.Timestamp}
		for _, f := range []struct {
			dst *float64
			src string
		}{
			{&c.Open, rc.Open}, {&c.High, rc.High}, {&c.Low, rc.Low},
			{&c.Close, rc.Close}, {&c.Volume, rc.TargetVolume},
		} {
			v, err := parseNum(f.src)
			if err != nil {
				return nil, fmt.Errorf("coinone chart candle %d (ts=%d): %w", i, rc.Timestamp, err)
			}
			*f.dst = v
		}
		candles = append(candles, c)
	}

	candles = model.Ascending(candles)
	if err := model.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("coinone chart: %w", err)
	}
	return candles, nil
}

func parseNum(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric field %q: %w", s, err)
	}
	return v, nil
}
