package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration and any rejected keys",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()
	w := cmd.OutOrStdout()

	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	_, _ = fmt.Fprintf(w, "  Config file: %s\n", path)
	if config.Exists(path) {
		_, _ = fmt.Fprintln(w, "  Status: loaded")
	} else {
		_, _ = fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	_, _ = fmt.Fprintln(w)

	writeConfig(w, cfg)

	if errs := configErrors(cfgErr); len(errs) > 0 {
		_, _ = fmt.Fprintln(w, "  Warnings (defaults kept):")
		for _, e := range errs {
			_, _ = fmt.Fprintf(w, "    %v\n", e)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func writeConfig(w io.Writer, cfg config.Config) {
	section := func(name string, kv ...any) {
		_, _ = fmt.Fprintf(w, "  [%s]\n", name)
		for i := 0; i+1 < len(kv); i += 2 {
			_, _ = fmt.Fprintf(w, "    %-18s %v\n", fmt.Sprint(kv[i])+":", kv[i+1])
		}
		_, _ = fmt.Fprintln(w)
	}

	section("cache",
		"dir", cfg.Cache.Dir,
		"buffer_200k", cfg.Cache.Buffer200k,
		"limits_ttl", seconds(cfg.Cache.LimitsTTL),
		"ccusage_ttl", seconds(cfg.Cache.SpendTTL),
		"pricing_ttl", seconds(cfg.Cache.PricingTTL),
	)
	section("timeouts",
		"limits", seconds(cfg.Timeouts.Limits),
		"pricing", seconds(cfg.Timeouts.Pricing),
		"spend", seconds(cfg.Timeouts.Spend),
	)
	th := cfg.Thresholds
	section("thresholds",
		"context", fmt.Sprintf("warn %.0f%%  crit %.0f%%  blink %s", th.Context.Warn, th.Context.Crit, blink(th.Context.Blink, "%.0f%%")),
		"cost", fmt.Sprintf("warn $%.2f  crit $%.2f  blink %s", th.Cost.Warn, th.Cost.Crit, blink(th.Cost.Blink, "$%.2f")),
		"compact_cols", th.CompactCols,
		"ultra_cols", th.UltraCols,
	)
	sym := cfg.Symbols
	section("symbols",
		"ctx", strings.Join(sym.Ctx[:], " "),
		"lim", strings.Join(sym.Lim[:], " "),
		"pie", strings.Join(sym.Pie[:], " "),
		"spark", sym.Spark,
		"bar_width", sym.BarWidth,
		"compact_bar_width", sym.CompactBarWidth,
	)
	section("display",
		"color", cfg.Display.Color,
		"cost_link", cfg.Display.CostLink,
		"usage_url", cfg.Display.UsageURL,
	)
	spend := "auto (ccusage, bunx, npx)"
	if len(cfg.Sources.SpendCommand) > 0 {
		spend = strings.Join(cfg.Sources.SpendCommand, " ")
	}
	section("sources",
		"pricing_url", cfg.Sources.PricingURL,
		"limits_url", cfg.Sources.LimitsURL,
		"spend_command", spend,
	)
	section("log",
		"level", cfg.Log.Level,
		"file", cfg.LogFile(),
		"session_max", cfg.Log.SessionMax,
		"session_db", cfg.SessionDBPath(),
	)
	if cfg.Metrics.Textfile != "" {
		section("metrics", "textfile", cfg.Metrics.Textfile)
	}

	if len(cfg.Pricing.Overrides) > 0 {
		models := make([]string, 0, len(cfg.Pricing.Overrides))
		for m := range cfg.Pricing.Overrides {
			models = append(models, m)
		}
		sort.Strings(models)
		_, _ = fmt.Fprintln(w, "  [pricing.overrides]")
		for _, m := range models {
			_, _ = fmt.Fprintf(w, "    %s\n", m)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func seconds(n int) string {
	return config.Seconds(n).String()
}

func blink(v float64, format string) string {
	if v == 0 {
		return "off"
	}
	return fmt.Sprintf(format, v)
}
