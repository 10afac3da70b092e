package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_ValidKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
[cache]
dir = "/var/tmp/bl"
limits_ttl = 300
buffer_200k = 40000

[thresholds]
ctx_warn = 50
ctx_crit = 70
ctx_blink = 95
cost_warn = 1.0
cost_crit = 2
compact_cols = 140
ultra_cols = 90

[symbols]
ctx = ["#", "."]
pie = ["a", "b", "c", "d", "e"]

[display]
color = "never"
cost_link = false

[pricing.overrides.claude-opus-4-5]
input_per_mtok = 4.5
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/bl", cfg.Cache.Dir)
	assert.Equal(t, 300, cfg.Cache.LimitsTTL)
	assert.Equal(t, int64(40000), cfg.Cache.Buffer200k)
	assert.Equal(t, Thresholds{Warn: 50, Crit: 70, Blink: 95}, cfg.Thresholds.Context)
	assert.Equal(t, Thresholds{Warn: 1, Crit: 2}, cfg.Thresholds.Cost)
	assert.Equal(t, 140, cfg.Thresholds.CompactCols)
	assert.Equal(t, 90, cfg.Thresholds.UltraCols)
	assert.Equal(t, [2]string{"#", "."}, cfg.Symbols.Ctx)
	assert.Equal(t, [5]string{"a", "b", "c", "d", "e"}, cfg.Symbols.Pie)
	assert.Equal(t, ColorNever, cfg.Display.Color)
	assert.False(t, cfg.Display.CostLink)

	o := cfg.Pricing.Overrides["claude-opus-4-5"]
	require.NotNil(t, o.InputPerMTok)
	assert.InDelta(t, 4.5, *o.InputPerMTok, 1e-9)
	assert.Nil(t, o.OutputPerMTok)
}

func TestParse_InvalidKeysFallBackIndividually(t *testing.T) {
	def := DefaultConfig()
	cfg, err := Parse([]byte(`
[cache]
limits_ttl = "soon"
ccusage_ttl = -5
pricing_ttl = 3600

[thresholds]
ctx_warn = 90
ctx_crit = 10

[symbols]
lim = ["x"]

[bogus]
a = 1
`))
	require.Error(t, err)

	assert.Equal(t, def.Cache.LimitsTTL, cfg.Cache.LimitsTTL)
	assert.Equal(t, def.Cache.SpendTTL, cfg.Cache.SpendTTL)
	assert.Equal(t, 3600, cfg.Cache.PricingTTL)
	assert.Equal(t, def.Thresholds.Context, cfg.Thresholds.Context)
	assert.Equal(t, def.Symbols.Lim, cfg.Symbols.Lim)

	assert.True(t, errors.Is(err, ErrWrongType))
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.True(t, errors.Is(err, ErrUnknownKey))

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.NotEmpty(t, cerr.Section)
}

func TestParse_SyntaxErrorKeepsAllDefaults(t *testing.T) {
	cfg, err := Parse([]byte("[cache\nlimits_ttl = 1"))
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_UltraAboveCompactRejected(t *testing.T) {
	cfg, err := Parse([]byte("[thresholds]\ncompact_cols = 70\nultra_cols = 100\n"))
	require.Error(t, err)
	assert.Equal(t, 120, cfg.Thresholds.CompactCols)
	assert.Equal(t, 80, cfg.Thresholds.UltraCols)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusline.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\nsession_max = 10\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.SessionMax)
	assert.True(t, Exists(path))
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	env := map[string]string{EnvCacheDir: "/x/cache", EnvNoColor: "1"}
	ApplyEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, "/x/cache", cfg.Cache.Dir)
	assert.Equal(t, ColorNever, cfg.Display.Color)
	assert.Equal(t, filepath.Join("/x/cache", "sessions.db"), cfg.SessionDBPath())
	assert.Equal(t, filepath.Join("/x/cache", "burnline.log"), cfg.LogFile())
}

func TestParse_PricingOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
[pricing.overrides.claude-opus-4-5]
input_per_mtok = 4.5
cache_read_per_mtok = 0

[pricing.overrides.claude-sonnet-4-5]
output_per_mtok = 12
`))
	require.NoError(t, err)
	require.Len(t, cfg.Pricing.Overrides, 2)

	opus := cfg.Pricing.Overrides["claude-opus-4-5"]
	require.NotNil(t, opus.InputPerMTok)
	assert.InDelta(t, 4.5, *opus.InputPerMTok, 1e-9)
	require.NotNil(t, opus.CacheReadPerMTok)
	assert.Zero(t, *opus.CacheReadPerMTok)
	assert.Nil(t, opus.OutputPerMTok)

	sonnet := cfg.Pricing.Overrides["claude-sonnet-4-5"]
	require.NotNil(t, sonnet.OutputPerMTok)
	assert.InDelta(t, 12.0, *sonnet.OutputPerMTok, 1e-9)

	merged := cfg.Pricing.Merge(PricingTable{"claude-opus-4-5": {InputPerMTok: 5, OutputPerMTok: 25}})
	assert.InDelta(t, 4.5, merged["claude-opus-4-5"].InputPerMTok, 1e-9)
	assert.InDelta(t, 25.0, merged["claude-opus-4-5"].OutputPerMTok, 1e-9)
}

func TestParse_PricingOverrideErrors(t *testing.T) {
	cfg, err := Parse([]byte(`
[pricing.overrides.claude-opus-4-5]
input_per_mtok = -1
output_per_mtok = 30
typo_per_mtok = 2
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.Contains(t, err.Error(), "config [pricing.overrides.claude-opus-4-5] typo_per_mtok")

	o := cfg.Pricing.Overrides["claude-opus-4-5"]
	assert.Nil(t, o.InputPerMTok)
	require.NotNil(t, o.OutputPerMTok)
	assert.InDelta(t, 30.0, *o.OutputPerMTok, 1e-9)
}
