package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/pipeline"
	"github.com/theirongolddev/burnline/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the session log (same as --stats)",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig()
	w := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.SessionDBPath()); err != nil {
		_, _ = fmt.Fprintln(w, "No session log.")
		return nil
	}

	l, err := store.Open(cfg.SessionDBPath(), cfg.Log.SessionMax)
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}
	defer func() { _ = l.Close() }()

	records, err := l.Records()
	if err != nil {
		return fmt.Errorf("reading session log: %w", err)
	}
	writeStats(w, pipeline.Summarize(records), cli.NewPalette(cfg.Display.Color))
	return nil
}

func writeStats(w io.Writer, sum model.LogSummary, p cli.Palette) {
	if sum.Entries == 0 {
		_, _ = fmt.Fprintln(w, "Log empty.")
		return
	}

	_, _ = fmt.Fprintf(w, "Entries: %s | Sessions: ~%s | Total: $%s\n\n",
		humanize.Comma(int64(sum.Entries)),
		humanize.Comma(int64(sum.Sessions)),
		humanize.CommafWithDigits(math.Round(sum.Total), 0),
	)

	rows := make([][]string, 0, len(sum.Days))
	for _, d := range sum.Days {
		rows = append(rows, []string{
			d.Date,
			cli.FormatSpend(d.MaxCost),
			cli.FormatTokens(d.MaxTokens),
			strings.Join(d.Projects, ", "),
		})
	}
	_, _ = fmt.Fprint(w, p.Table(cli.Table{
		Headers: []string{"Date", "Cost", "Tokens", "Projects"},
		Rows:    rows,
	}))
}
