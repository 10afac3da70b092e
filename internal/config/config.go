// Package config loads burnline's TOML configuration and environment overrides.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all burnline configuration. It is built once per invocation
// and treated as read-only afterwards.
type Config struct {
	Cache      CacheConfig      `toml:"cache"`
	Timeouts   TimeoutConfig    `toml:"timeouts"`
	Thresholds ThresholdConfig  `toml:"thresholds"`
	Symbols    SymbolConfig     `toml:"symbols"`
	Display    DisplayConfig    `toml:"display"`
	Sources    SourceConfig     `toml:"sources"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// CacheConfig controls the on-disk cache and per-source TTLs (seconds).
type CacheConfig struct {
	Dir        string `toml:"dir"`
	Buffer200k int64  `toml:"buffer_200k"`
	LimitsTTL  int    `toml:"limits_ttl"`
	SpendTTL   int    `toml:"ccusage_ttl"`
	PricingTTL int    `toml:"pricing_ttl"`
}

// TimeoutConfig bounds each live fetch (seconds).
type TimeoutConfig struct {
	Limits  int `toml:"limits"`
	Pricing int `toml:"pricing"`
	Spend   int `toml:"spend"`
}

// Thresholds are inclusive lower bounds of the warn, critical and blink
// tiers. A zero Blink disables the blink tier.
type Thresholds struct {
	Warn  float64
	Crit  float64
	Blink float64
}

// ThresholdConfig holds severity cutoffs and layout column cutoffs.
// Context cutoffs are percentages, cost cutoffs are USD.
type ThresholdConfig struct {
	Context     Thresholds `toml:"-"`
	Cost        Thresholds `toml:"-"`
	CompactCols int        `toml:"compact_cols"`
	UltraCols   int        `toml:"ultra_cols"`
}

// SymbolConfig holds the glyph sets used for bars, pies and sparklines.
type SymbolConfig struct {
	Ctx             [2]string `toml:"ctx"`
	Lim             [2]string `toml:"lim"`
	Pie             [5]string `toml:"pie"`
	Spark           string    `toml:"spark"`
	BarWidth        int       `toml:"bar_width"`
	CompactBarWidth int       `toml:"compact_bar_width"`
}

// DisplayConfig holds rendering preferences.
type DisplayConfig struct {
	Color    string `toml:"color"` // always, never
	CostLink bool   `toml:"cost_link"`
	UsageURL string `toml:"usage_url"`
}

// SourceConfig points the source adapters at their upstreams.
type SourceConfig struct {
	PricingURL   string   `toml:"pricing_url"`
	LimitsURL    string   `toml:"limits_url"`
	SpendCommand []string `toml:"spend_command,omitempty"`
}

// LogConfig controls the diagnostics log and the session log.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file,omitempty"`
	SessionMax int    `toml:"session_max"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"`
}

// Color modes.
const (
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Dir:        filepath.Join(os.TempDir(), "claude-statusline"),
			Buffer200k: 33_000,
			LimitsTTL:  900,
			SpendTTL:   60,
			PricingTTL: 86_400,
		},
		Timeouts: TimeoutConfig{
			Limits:  10,
			Pricing: 10,
			Spend:   30,
		},
		Thresholds: ThresholdConfig{
			Context:     Thresholds{Warn: 60, Crit: 80, Blink: 90},
			Cost:        Thresholds{Warn: 0.50, Crit: 1.00},
			CompactCols: 120,
			UltraCols:   80,
		},
		Symbols: SymbolConfig{
			Ctx:             [2]string{"◆", "◇"},
			Lim:             [2]string{"◼", "◻"},
			Pie:             [5]string{"○", "◔", "◑", "◕", "●"},
			Spark:           "▁▂▃▄▅▆▇█",
			BarWidth:        10,
			CompactBarWidth: 6,
		},
		Display: DisplayConfig{
			Color:    ColorAlways,
			CostLink: true,
			UsageURL: "https://console.anthropic.com/settings/usage",
		},
		Sources: SourceConfig{
			PricingURL: "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json",
			LimitsURL:  "https://api.anthropic.com/api/oauth/usage",
		},
		Log: LogConfig{
			Level:      "warn",
			SessionMax: 5000,
		},
	}
}

// Seconds converts a config value in seconds to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// LogFile returns the diagnostics log path, defaulting into the cache dir.
func (c Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Cache.Dir, "burnline.log")
}

// SessionDBPath returns the path of the session log database.
func (c Config) SessionDBPath() string {
	return filepath.Join(c.Cache.Dir, "sessions.db")
}
