// Package pipeline turns raw snapshot, spend and session-log data into the
// aggregates the statusline and --stats display.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/burnline/internal/model"
)

// SeriesPoints is the length of the daily spend sparkline series.
const SeriesPoints = 7

// SummarizeSpend computes 1/7/30-day totals and the daily series ending
// today from per-day spend.
func SummarizeSpend(days []model.DailySpend, now time.Time) model.SpendReport {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	report := model.SpendReport{Series: make([]float64, SeriesPoints)}

	for _, d := range days {
		date, err := time.Parse(model.DateLayout, d.Date)
		if err != nil {
			continue
		}
		age := int(today.Sub(date) / (24 * time.Hour))
		if age < 0 {
			continue
		}
		if age == 0 {
			report.Today += d.Cost
		}
		if age < 7 {
			report.Week += d.Cost
		}
		if age < 30 {
			report.Month += d.Cost
		}
		if age < SeriesPoints {
			report.Series[SeriesPoints-1-age] += d.Cost
		}
	}
	return report
}

// sessionDropRatio and sessionMinCost define a session boundary in the log
// when no session ids were recorded: cost falls below half of the running
// maximum after that maximum exceeded ten cents.
const (
	sessionDropRatio = 0.5
	sessionMinCost   = 0.10
	statsDays        = 7
)

// Summarize digests session-log records (oldest first) for --stats.
func Summarize(records []model.SessionRecord) model.LogSummary {
	sum := model.LogSummary{Entries: len(records)}
	if len(records) == 0 {
		return sum
	}

	for _, cost := range sessionCosts(records) {
		sum.Sessions++
		sum.Total += cost
	}

	byDate := make(map[string]*model.DayStats)
	projects := make(map[string]map[string]struct{})
	for _, r := range records {
		date := r.Time.Local().Format(model.DateLayout)
		ds, ok := byDate[date]
		if !ok {
			ds = &model.DayStats{Date: date}
			byDate[date] = ds
			projects[date] = make(map[string]struct{})
		}
		if r.Cost > ds.MaxCost {
			ds.MaxCost = r.Cost
		}
		if r.Tokens > ds.MaxTokens {
			ds.MaxTokens = r.Tokens
		}
		p := r.Project
		if p == "" {
			p = "?"
		}
		projects[date][p] = struct{}{}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > statsDays {
		dates = dates[len(dates)-statsDays:]
	}
	for _, d := range dates {
		ds := byDate[d]
		for p := range projects[d] {
			ds.Projects = append(ds.Projects, p)
		}
		sort.Strings(ds.Projects)
		sum.Days = append(sum.Days, *ds)
	}
	return sum
}

// sessionCosts returns the final cost of each session in the log. Records
// with a session id are grouped by it; the rest are split on cost drops.
func sessionCosts(records []model.SessionRecord) []float64 {
	var costs []float64
	byID := make(map[string]float64)
	var order []string
	var curMax float64

	for _, r := range records {
		if r.SessionID != "" {
			if _, seen := byID[r.SessionID]; !seen {
				order = append(order, r.SessionID)
			}
			if r.Cost > byID[r.SessionID] {
				byID[r.SessionID] = r.Cost
			}
			continue
		}
		if r.Cost < curMax*sessionDropRatio && curMax > sessionMinCost {
			costs = append(costs, curMax)
			curMax = r.Cost
		} else if r.Cost > curMax {
			curMax = r.Cost
		}
	}
	if curMax > 0 {
		costs = append(costs, curMax)
	}
	for _, id := range order {
		costs = append(costs, byID[id])
	}
	return costs
}
