package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"coinscalp/internal/backtest"
	"coinscalp/internal/indicator"
	"coinscalp/internal/strategy"
)

// Strategies bundles everything a backtest run is parameterized by:
// account settings, indicator periods, and per-strategy thresholds.
type Strategies struct {
	Backtest   backtest.Config  `yaml:"backtest"`
	Indicators indicator.Config `yaml:"indicators"`
	Params     strategy.Params  `yaml:"strategies"`
}

// DefaultStrategies returns the compiled-in parameter set the live bot
// runs with.
func DefaultStrategies() *Strategies {
	return &Strategies{
		Backtest:   backtest.DefaultConfig(),
		Indicators: indicator.DefaultConfig(),
		Params:     strategy.DefaultParams(),
	}
}

// LoadStrategies reads a YAML parameter file layered over the defaults.
// An empty path returns the defaults unchanged.
func LoadStrategies(path string) (*Strategies, error) {
	s := DefaultStrategies()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("strategy file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("strategy file %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("strategy file %s: %w", path, err)
	}
	return s, nil
}

func (s *Strategies) validate() error {
	if s.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive")
	}
	if s.Backtest.PositionSize <= 0 || s.Backtest.PositionSize > 1 {
		return fmt.Errorf("position_size must be in (0,1]")
	}
	if s.Backtest.FeeRate < 0 || s.Backtest.FeeRate >= 1 {
		return fmt.Errorf("fee_rate must be in [0,1)")
	}
	for _, p := range []struct {
		name string
		v    int
	}{
		{"rsi_period", s.Indicators.RSIPeriod},
		{"ema_fast", s.Indicators.EMAFast},
		{"ema_slow", s.Indicators.EMASlow},
		{"ema_trend", s.Indicators.EMATrend},
		{"ema_baseline", s.Indicators.EMABaseline},
		{"band_period", s.Indicators.BandPeriod},
		{"volume_period", s.Indicators.VolumePeriod},
		{"sr_window", s.Indicators.SRWindow},
	} {
		if p.v <= 0 {
			return fmt.Errorf("indicator %s must be positive", p.name)
		}
	}
	prev := 0.0
	for i, t := range s.Params.Uptrend.Tiers {
		if t.MaxRSI <= prev {
			return fmt.Errorf("uptrend tier %d: max_rsi %v not above previous bound %v", i, t.MaxRSI, prev)
		}
		prev = t.MaxRSI
	}
	return nil
}
