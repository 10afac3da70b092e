package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/credential"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/source"
	"github.com/theirongolddev/burnline/internal/statusline"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show subscription rate limits",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig()
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	st, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		st = nil
	}
	adapters := statusline.NewAdapters(cfg, statusline.DefaultSources(cfg), st, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*config.Seconds(cfg.Timeouts.Limits))
	defer cancel()

	res, err := adapters.Limits.Fetch(ctx)
	w := cmd.OutOrStdout()
	if errors.Is(err, source.ErrUnavailable) {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  Rate limits unavailable.")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "  burnline reads the Claude Code OAuth token from $%s,\n", config.EnvOAuthToken)
		_, _ = fmt.Fprintf(w, "  the OS credential store (%q) or ~/.claude/.credentials.json.\n", credential.ServiceName)
		_, _ = fmt.Fprintln(w, "  Run `claude` and log in, then try again.")
		_, _ = fmt.Fprintln(w)
		return nil
	}

	p := cli.NewPalette(cfg.Display.Color)
	rows := limitRows(res.Data, cfg, p, time.Now())
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "  No rate-limit windows reported.")
		return nil
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, p.Table(cli.Table{
		Title:   "Rate Limits",
		Headers: []string{"Window", "Used", "Bar", "Resets"},
		Rows:    rows,
	}))

	fetched := res.FetchedAt.Local().Format("3:04:05 PM")
	if res.Stale {
		_, _ = fmt.Fprintf(w, "  %s\n\n", p.Tier(cli.Warn, "Stale data from "+fetched+" (live fetch failed)"))
		return nil
	}
	_, _ = fmt.Fprintf(w, "  Fetched at %s (%s)\n\n", fetched, res.Outcome)
	return nil
}

func limitRows(s model.RateLimitStatus, cfg config.Config, p cli.Palette, now time.Time) [][]string {
	windows := []struct {
		label string
		w     *model.Window
	}{
		{"5-hour window", s.FiveHour},
		{"7-day (all)", s.SevenDay},
		{"7-day Opus", s.SevenDayOpus},
		{"7-day Sonnet", s.SevenDaySonnet},
		{"7-day Haiku", s.SevenDayHaiku},
	}

	var rows [][]string
	for _, win := range windows {
		if win.w == nil {
			continue
		}
		tier := cli.Severity(win.w.Pct*100, cfg.Thresholds.Context)
		resets := ""
		if !win.w.ResetsAt.IsZero() {
			if d := win.w.ResetsAt.Sub(now); d > 0 {
				resets = cli.FormatCountdown(d)
			} else {
				resets = "now"
			}
		}
		rows = append(rows, []string{
			win.label,
			p.Tier(tier, cli.FormatPercent(win.w.Pct)),
			p.Tier(tier, cli.Bar(win.w.Pct, 20, cfg.Symbols.Lim)),
			resets,
		})
	}
	return rows
}
