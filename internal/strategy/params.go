package strategy

// Params bundles the tunable thresholds for every strategy variant.
// Loaded from YAML by the config layer; never mutated during a run.
type Params struct {
	MeanReversion MeanReversionParams `yaml:"mean_reversion"`
	RSI           RSIThresholdParams  `yaml:"rsi"`
	Combined      CombinedParams      `yaml:"combined"`
	Uptrend       UptrendParams       `yaml:"uptrend"`
	Sideways      SidewaysParams      `yaml:"sideways"`
}

// MeanReversionParams tunes the Bollinger mean-reversion variant.
type MeanReversionParams struct {
	// Tolerance is the band touch tolerance as a fraction (0.001 = 0.1%).
	Tolerance float64 `yaml:"tolerance"`
}

// RSIThresholdParams tunes the plain RSI oversold/overbought variant.
type RSIThresholdParams struct {
	LowBound  float64 `yaml:"low_bound"`
	HighBound float64 `yaml:"high_bound"`
}

// CombinedParams tunes the regime-filtered combined variant.
type CombinedParams struct {
	RSIEntry     float64 `yaml:"rsi_entry"`
	RSIExit      float64 `yaml:"rsi_exit"`
	BandEntryTol float64 `yaml:"band_entry_tol"` // multiplier on the lower band
	BandExitTol  float64 `yaml:"band_exit_tol"`  // multiplier on the upper band
	StopLossPct  float64 `yaml:"stop_loss_pct"`
}

// UptrendParams tunes the tiered gradual-entry uptrend variant.
type UptrendParams struct {
	MaxRSI        float64 `yaml:"max_rsi"` // hard gate: no entry above this
	EntryStrength float64 `yaml:"entry_strength"`
	Tiers         []Tier  `yaml:"tiers"`
}

// SidewaysParams tunes the oversold sideways variant.
type SidewaysParams struct {
	MaxRSI        float64 `yaml:"max_rsi"` // required condition, not weighted
	MinRSI        float64 `yaml:"min_rsi"` // "not too extreme" floor
	BandPosition  float64 `yaml:"band_position"`
	VolumeSpike   float64 `yaml:"volume_spike"`
	EntryStrength float64 `yaml:"entry_strength"`
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`
}

// Tier is one row of the gradual-entry table: positions scale down and
// risk tightens as RSI rises. Rows are evaluated top-down; the first
// row whose bound contains the RSI wins.
type Tier struct {
	Name          string  `yaml:"name"`
	MaxRSI        float64 `yaml:"max_rsi"` // upper bound, inclusive
	PositionSize  float64 `yaml:"position_size"`
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`
}

// DefaultParams returns the thresholds the live Coinone bot runs with.
func DefaultParams() Params {
	return Params{
		MeanReversion: MeanReversionParams{Tolerance: 0.001},
		RSI:           RSIThresholdParams{LowBound: 30, HighBound: 70},
		Combined: CombinedParams{
			RSIEntry:     35,
			RSIExit:      65,
			BandEntryTol: 1.002,
			BandExitTol:  0.998,
			StopLossPct:  2.0,
		},
		Uptrend: UptrendParams{
			MaxRSI:        40,
			EntryStrength: 0.75,
			Tiers: []Tier{
				{Name: "Tier1(100%)", MaxRSI: 30, PositionSize: 1.0, StopLossPct: 5.0, TakeProfitPct: 3.0},
				{Name: "Tier2(50%)", MaxRSI: 35, PositionSize: 0.5, StopLossPct: 4.0, TakeProfitPct: 2.0},
				{Name: "Tier3(25%)", MaxRSI: 40, PositionSize: 0.25, StopLossPct: 3.0, TakeProfitPct: 1.5},
			},
		},
		Sideways: SidewaysParams{
			MaxRSI:        32,
			MinRSI:        15,
			BandPosition:  0.4,
			VolumeSpike:   1.1,
			EntryStrength: 0.8,
			StopLossPct:   2.5,
			TakeProfitPct: 1.2,
		},
	}
}
