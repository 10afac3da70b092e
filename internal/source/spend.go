package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"time"

	"github.com/theirongolddev/burnline/internal/model"

	"github.com/bytedance/sonic"
)

// SpendWindowDays is how many days of history the spend report covers.
const SpendWindowDays = 30

// ErrNoSpendCommand is returned when neither ccusage nor a runner for it is installed.
var ErrNoSpendCommand = errors.New("spend: ccusage not found (tried ccusage, bunx, npx)")

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// SpendFetcher shells out to ccusage for the daily cost report.
type SpendFetcher struct {
	Command  []string // explicit command; auto-detected when empty
	Run      Runner
	LookPath func(string) (string, error)
	Now      func() time.Time
}

// Fetch implements Fetcher. The result is per-day totals, oldest first.
func (f SpendFetcher) Fetch(ctx context.Context) ([]model.DailySpend, error) {
	command, err := f.command()
	if err != nil {
		return nil, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	until := now()
	since := until.AddDate(0, 0, -(SpendWindowDays - 1))

	args := append(command[1:len(command):len(command)],
		"daily", "--json", "--instances",
		"--since", since.Format("20060102"),
		"--until", until.Format("20060102"),
		"--mode", "calculate",
	)

	run := f.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, command[0], args...)
	if err != nil {
		return nil, fmt.Errorf("spend: running %s: %w", command[0], err)
	}
	return ParseSpend(out)
}

func (f SpendFetcher) command() ([]string, error) {
	if len(f.Command) > 0 {
		return f.Command, nil
	}
	lookPath := f.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range [][]string{
		{"ccusage"},
		{"bunx", "ccusage"},
		{"npx", "-y", "ccusage"},
	} {
		if _, err := lookPath(candidate[0]); err == nil {
			return candidate, nil
		}
	}
	return nil, ErrNoSpendCommand
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// npx and bunx spawn children that can hold stdout open after a kill.
	cmd.WaitDelay = 2 * time.Second
	return cmd.Output()
}

type spendEntry struct {
	Date      string   `json:"date"`
	TotalCost *float64 `json:"totalCost"`
	Cost      *float64 `json:"cost"`
}

type spendDocument struct {
	Daily    []json.RawMessage            `json:"daily"`
	Data     []json.RawMessage            `json:"data"`
	Projects map[string][]json.RawMessage `json:"projects"`
}

// ParseSpend decodes ccusage daily output in any of its shapes: a bare
// array, {"daily": [...]}, {"data": [...]} or the --instances form
// {"projects": {"name": [...]}}. Costs for the same day are summed.
func ParseSpend(out []byte) ([]model.DailySpend, error) {
	var items []json.RawMessage
	if err := sonic.Unmarshal(out, &items); err != nil {
		var doc spendDocument
		if err := sonic.Unmarshal(out, &doc); err != nil {
			return nil, fmt.Errorf("spend: parsing ccusage output: %w", err)
		}
		items = append(items, doc.Daily...)
		items = append(items, doc.Data...)
		for _, entries := range doc.Projects {
			items = append(items, entries...)
		}
	}

	byDay := make(map[string]float64)
	for _, raw := range items {
		var e spendEntry
		if err := sonic.Unmarshal(raw, &e); err != nil {
			continue
		}
		if _, err := time.Parse(model.DateLayout, e.Date); err != nil {
			continue
		}
		cost := e.TotalCost
		if cost == nil {
			cost = e.Cost
		}
		if cost == nil {
			continue
		}
		byDay[e.Date] += *cost
	}

	days := make([]model.DailySpend, 0, len(byDay))
	for date, cost := range byDay {
		days = append(days, model.DailySpend{Date: date, Cost: cost})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
