package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/cli"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List cached source data",
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached source data",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig()
	st, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	entries, err := st.Entries()
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, _ = fmt.Fprintf(w, "  Cache is empty (%s)\n", st.Dir())
		return nil
	}

	now := st.Now()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state := cache.Stale
		if e.FreshAt(now) {
			state = cache.Fresh
		}
		rows = append(rows, []string{
			e.Key,
			state.String(),
			humanize.RelTime(e.FetchedAt, now, "ago", "from now"),
			e.TTL.String(),
			humanize.Bytes(uint64(len(e.Payload))),
		})
	}

	p := cli.NewPalette(cfg.Display.Color)
	_, _ = fmt.Fprint(w, p.Table(cli.Table{
		Title:   st.Dir(),
		Headers: []string{"Key", "State", "Fetched", "TTL", "Size"},
		Rows:    rows,
	}))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig()
	st, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Cleared %s at %s\n", st.Dir(), time.Now().Format(time.Kitchen))
	return nil
}
