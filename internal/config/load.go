package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// Error describes a single rejected config key. The key keeps its default.
type Error struct {
	Section string
	Key     string
	Err     error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config [%s]: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("config [%s] %s: %v", e.Section, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrWrongType is reported when a key holds a value of the wrong TOML type.
	ErrWrongType = errors.New("wrong type")
	// ErrOutOfRange is reported when a key's value fails validation.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnknownKey is reported for keys burnline does not recognise.
	ErrUnknownKey = errors.New("unknown key")
)

// Path returns the config file path: $BURNLINE_CONFIG or ~/.claude/statusline.toml.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "statusline.toml")
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the config file at path, returning defaults if it doesn't exist.
// The returned Config is always usable: invalid keys fall back to their
// defaults and are reported in the joined error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML config data on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	d := &decoder{}
	d.cache(raw, &cfg.Cache)
	d.timeouts(raw, &cfg.Timeouts)
	d.thresholds(raw, &cfg.Thresholds)
	d.symbols(raw, &cfg.Symbols)
	d.display(raw, &cfg.Display)
	d.sources(raw, &cfg.Sources)
	d.log(raw, &cfg.Log)
	d.metrics(raw, &cfg.Metrics)
	d.pricing(raw, &cfg.Pricing)

	known := map[string]bool{
		"cache": true, "timeouts": true, "thresholds": true, "symbols": true, "display": true,
		"sources": true, "log": true, "metrics": true, "pricing": true,
		"history": true, // accepted for compatibility, unused
	}
	for _, name := range sortedKeys(raw) {
		if !known[name] {
			d.fail(name, "", ErrUnknownKey)
		}
	}

	return cfg, errors.Join(d.errs...)
}

type decoder struct {
	errs []error
}

func (d *decoder) fail(section, key string, err error) {
	d.errs = append(d.errs, &Error{Section: section, Key: key, Err: err})
}

func (d *decoder) section(raw map[string]any, name string, known ...string) map[string]any {
	v, ok := raw[name]
	if !ok {
		return nil
	}
	sec, ok := v.(map[string]any)
	if !ok {
		d.fail(name, "", ErrWrongType)
		return nil
	}
	if len(known) > 0 {
		allowed := make(map[string]bool, len(known))
		for _, k := range known {
			allowed[k] = true
		}
		for _, k := range sortedKeys(sec) {
			if !allowed[k] {
				d.fail(name, k, ErrUnknownKey)
			}
		}
	}
	return sec
}

func (d *decoder) int(sec map[string]any, section, key string, dst *int, valid func(int) bool) {
	v, ok := sec[key]
	if !ok {
		return
	}
	n, ok := v.(int64)
	if !ok {
		d.fail(section, key, ErrWrongType)
		return
	}
	if valid != nil && !valid(int(n)) {
		d.fail(section, key, fmt.Errorf("%w: %d", ErrOutOfRange, n))
		return
	}
	*dst = int(n)
}

func (d *decoder) float(sec map[string]any, section, key string, dst *float64, valid func(float64) bool) {
	v, ok := sec[key]
	if !ok {
		return
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	default:
		d.fail(section, key, ErrWrongType)
		return
	}
	if valid != nil && !valid(f) {
		d.fail(section, key, fmt.Errorf("%w: %g", ErrOutOfRange, f))
		return
	}
	*dst = f
}

func (d *decoder) string(sec map[string]any, section, key string, dst *string, valid func(string) bool) {
	v, ok := sec[key]
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.fail(section, key, ErrWrongType)
		return
	}
	if valid != nil && !valid(s) {
		d.fail(section, key, fmt.Errorf("%w: %q", ErrOutOfRange, s))
		return
	}
	*dst = s
}

func (d *decoder) bool(sec map[string]any, section, key string, dst *bool) {
	v, ok := sec[key]
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(section, key, ErrWrongType)
		return
	}
	*dst = b
}

// strings decodes a string array. want > 0 requires exactly that many
// non-empty elements.
func (d *decoder) strings(sec map[string]any, section, key string, want int) ([]string, bool) {
	v, ok := sec[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		d.fail(section, key, ErrWrongType)
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			d.fail(section, key, ErrWrongType)
			return nil, false
		}
		if want > 0 && s == "" {
			d.fail(section, key, fmt.Errorf("%w: empty glyph", ErrOutOfRange))
			return nil, false
		}
		out = append(out, s)
	}
	if want > 0 && len(out) != want {
		d.fail(section, key, fmt.Errorf("%w: want %d entries, got %d", ErrOutOfRange, want, len(out)))
		return nil, false
	}
	return out, true
}

func positive(n int) bool { return n > 0 }

func nonNegative(f float64) bool { return f >= 0 }

func nonEmpty(s string) bool { return s != "" }

func (d *decoder) cache(raw map[string]any, c *CacheConfig) {
	const name = "cache"
	sec := d.section(raw, name, "dir", "buffer_200k", "limits_ttl", "ccusage_ttl", "pricing_ttl")
	if sec == nil {
		return
	}
	d.string(sec, name, "dir", &c.Dir, nonEmpty)
	buf := int(c.Buffer200k)
	d.int(sec, name, "buffer_200k", &buf, func(n int) bool { return n >= 0 && n < 200_000 })
	c.Buffer200k = int64(buf)
	d.int(sec, name, "limits_ttl", &c.LimitsTTL, positive)
	d.int(sec, name, "ccusage_ttl", &c.SpendTTL, positive)
	d.int(sec, name, "pricing_ttl", &c.PricingTTL, positive)
}

func (d *decoder) timeouts(raw map[string]any, t *TimeoutConfig) {
	const name = "timeouts"
	sec := d.section(raw, name, "limits", "pricing", "spend")
	if sec == nil {
		return
	}
	d.int(sec, name, "limits", &t.Limits, positive)
	d.int(sec, name, "pricing", &t.Pricing, positive)
	d.int(sec, name, "spend", &t.Spend, positive)
}

func (d *decoder) thresholds(raw map[string]any, t *ThresholdConfig) {
	const name = "thresholds"
	sec := d.section(raw, name,
		"ctx_warn", "ctx_crit", "ctx_blink",
		"cost_warn", "cost_crit", "cost_blink",
		"compact_cols", "ultra_cols")
	if sec == nil {
		return
	}

	ctx := t.Context
	d.float(sec, name, "ctx_warn", &ctx.Warn, nonNegative)
	d.float(sec, name, "ctx_crit", &ctx.Crit, nonNegative)
	d.float(sec, name, "ctx_blink", &ctx.Blink, nonNegative)
	if ordered(ctx) {
		t.Context = ctx
	} else {
		d.fail(name, "ctx_*", fmt.Errorf("%w: want warn <= crit <= blink", ErrOutOfRange))
	}

	cost := t.Cost
	d.float(sec, name, "cost_warn", &cost.Warn, nonNegative)
	d.float(sec, name, "cost_crit", &cost.Crit, nonNegative)
	d.float(sec, name, "cost_blink", &cost.Blink, nonNegative)
	if ordered(cost) {
		t.Cost = cost
	} else {
		d.fail(name, "cost_*", fmt.Errorf("%w: want warn <= crit <= blink", ErrOutOfRange))
	}

	compact, ultra := t.CompactCols, t.UltraCols
	d.int(sec, name, "compact_cols", &compact, positive)
	d.int(sec, name, "ultra_cols", &ultra, positive)
	if ultra <= compact {
		t.CompactCols, t.UltraCols = compact, ultra
	} else {
		d.fail(name, "ultra_cols", fmt.Errorf("%w: ultra_cols must not exceed compact_cols", ErrOutOfRange))
	}
}

func ordered(t Thresholds) bool {
	if t.Warn > t.Crit {
		return false
	}
	return t.Blink == 0 || t.Crit <= t.Blink
}

func (d *decoder) symbols(raw map[string]any, s *SymbolConfig) {
	const name = "symbols"
	sec := d.section(raw, name, "ctx", "lim", "pie", "spark", "bar_width", "compact_bar_width")
	if sec == nil {
		return
	}
	if v, ok := d.strings(sec, name, "ctx", 2); ok {
		copy(s.Ctx[:], v)
	}
	if v, ok := d.strings(sec, name, "lim", 2); ok {
		copy(s.Lim[:], v)
	}
	if v, ok := d.strings(sec, name, "pie", 5); ok {
		copy(s.Pie[:], v)
	}
	d.string(sec, name, "spark", &s.Spark, func(v string) bool { return utf8.RuneCountInString(v) >= 2 })
	d.int(sec, name, "bar_width", &s.BarWidth, func(n int) bool { return n > 0 && n <= 40 })
	d.int(sec, name, "compact_bar_width", &s.CompactBarWidth, func(n int) bool { return n > 0 && n <= 40 })
}

func (d *decoder) display(raw map[string]any, c *DisplayConfig) {
	const name = "display"
	sec := d.section(raw, name, "color", "cost_link", "usage_url")
	if sec == nil {
		return
	}
	d.string(sec, name, "color", &c.Color, func(v string) bool { return v == ColorAlways || v == ColorNever })
	d.bool(sec, name, "cost_link", &c.CostLink)
	d.string(sec, name, "usage_url", &c.UsageURL, nonEmpty)
}

func (d *decoder) sources(raw map[string]any, c *SourceConfig) {
	const name = "sources"
	sec := d.section(raw, name, "pricing_url", "limits_url", "spend_command")
	if sec == nil {
		return
	}
	d.string(sec, name, "pricing_url", &c.PricingURL, nonEmpty)
	d.string(sec, name, "limits_url", &c.LimitsURL, nonEmpty)
	if v, ok := d.strings(sec, name, "spend_command", 0); ok {
		if len(v) == 0 {
			d.fail(name, "spend_command", fmt.Errorf("%w: empty command", ErrOutOfRange))
		} else {
			c.SpendCommand = v
		}
	}
}

func (d *decoder) log(raw map[string]any, c *LogConfig) {
	const name = "log"
	sec := d.section(raw, name, "level", "file", "session_max")
	if sec == nil {
		return
	}
	d.string(sec, name, "level", &c.Level, validLevel)
	d.string(sec, name, "file", &c.File, nonEmpty)
	d.int(sec, name, "session_max", &c.SessionMax, positive)
}

func validLevel(s string) bool {
	switch s {
	case "off", "debug", "info", "warn", "error":
		return true
	}
	return false
}

func (d *decoder) metrics(raw map[string]any, c *MetricsConfig) {
	const name = "metrics"
	sec := d.section(raw, name, "textfile")
	if sec == nil {
		return
	}
	d.string(sec, name, "textfile", &c.Textfile, nonEmpty)
}

func (d *decoder) pricing(raw map[string]any, p *PricingOverrides) {
	const name = "pricing"
	sec := d.section(raw, name, "overrides")
	if sec == nil {
		return
	}
	v, ok := sec["overrides"]
	if !ok {
		return
	}
	overrides, ok := v.(map[string]any)
	if !ok {
		d.fail(name, "overrides", ErrWrongType)
		return
	}
	for _, modelName := range sortedKeys(overrides) {
		section := name + ".overrides." + modelName
		fields, ok := overrides[modelName].(map[string]any)
		if !ok {
			d.fail(section, "", ErrWrongType)
			continue
		}
		var o ModelPricingOverride
		dsts := map[string]**float64{
			"input_per_mtok":       &o.InputPerMTok,
			"output_per_mtok":      &o.OutputPerMTok,
			"cache_write_per_mtok": &o.CacheWritePerMTok,
			"cache_read_per_mtok":  &o.CacheReadPerMTok,
		}
		for _, key := range sortedKeys(fields) {
			dst, known := dsts[key]
			if !known {
				d.fail(section, key, ErrUnknownKey)
				continue
			}
			f := -1.0
			d.float(fields, section, key, &f, nonNegative)
			if f >= 0 {
				price := f
				*dst = &price
			}
		}
		if p.Overrides == nil {
			p.Overrides = make(map[string]ModelPricingOverride)
		}
		p.Overrides[modelName] = o
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
