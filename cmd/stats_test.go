package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	writeStats(&buf, model.LogSummary{
		Entries:  1234,
		Sessions: 3,
		Total:    41.6,
		Days: []model.DayStats{
			{Date: "2026-10-18", MaxCost: 12.2, MaxTokens: 1_900_000, Projects: []string{"api", "web"}},
			{Date: "2026-10-19", MaxCost: 4, MaxTokens: 80_000, Projects: []string{"?"}},
		},
	}, cli.NewPalette(config.ColorNever))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Entries: 1,234 | Sessions: ~3 | Total: $42\n\n"), out)
	assert.Contains(t, out, "│ 2026-10-18 │  $12 │   1.9M │ api, web │")
	assert.Contains(t, out, "│ 2026-10-19 │   $4 │    80k │        ? │")
}

func TestWriteStats_TotalRoundsToNearestDollar(t *testing.T) {
	var buf bytes.Buffer
	writeStats(&buf, model.LogSummary{Entries: 2, Sessions: 1, Total: 1234.5}, cli.NewPalette(config.ColorNever))
	assert.True(t, strings.HasPrefix(buf.String(), "Entries: 2 | Sessions: ~1 | Total: $1,235\n"), buf.String())
}

func TestWriteStats_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeStats(&buf, model.LogSummary{}, cli.NewPalette(config.ColorNever))
	assert.Equal(t, "Log empty.\n", buf.String())
}

func TestConfigErrors(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	assert.Equal(t, []error{a, b}, configErrors(errors.Join(a, b)))
	assert.Equal(t, []error{a}, configErrors(a))
	assert.Nil(t, configErrors(nil))
}

func TestLimitRows(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cfg := config.DefaultConfig()
	rows := limitRows(model.RateLimitStatus{
		FiveHour:      &model.Window{Pct: 0.5, ResetsAt: now.Add(75 * time.Minute)},
		SevenDay:      &model.Window{Pct: 0.1, ResetsAt: now.Add(-time.Minute)},
		SevenDayHaiku: &model.Window{Pct: 0.02},
	}, cfg, cli.NewPalette(config.ColorNever), now)

	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"5-hour window", "50%", strings.Repeat("◼", 10) + strings.Repeat("◻", 10), "1:15"}, rows[0])
	assert.Equal(t, "now", rows[1][3])
	assert.Equal(t, "7-day Haiku", rows[2][0])
	assert.Empty(t, rows[2][3])
}
