// Package cli provides severity tiers, styling and formatting for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatTokens formats a token count compactly.
// e.g., 850 -> "850", 128400 -> "128k", 1900000 -> "1.9M", 21400000 -> "21M"
func FormatTokens(n int64) string {
	if n < 0 {
		return "-" + FormatTokens(-n)
	}

	switch {
	case n >= 10_000_000:
		return strconv.FormatInt(n/1_000_000, 10) + "M"
	case n >= 1_000_000:
		s := strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64)
		return strings.TrimSuffix(s, ".0") + "M"
	case n >= 1_000:
		return strconv.FormatInt(n/1_000, 10) + "k"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatCost formats a session or request cost in USD with cents.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// FormatSpend formats a spend-window total in whole dollars.
func FormatSpend(cost float64) string {
	return fmt.Sprintf("$%.0f", cost)
}

// FormatDuration formats milliseconds as "2h04m" or "14m".
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	hours, mins := secs/3600, secs%3600/60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatCountdown formats the time until a reset as "H:MM".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int64(d / time.Minute)
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// FormatPercent formats a 0-1 fraction as a whole percentage, rounding down.
// The epsilon keeps fractions such as 29/100 from flooring to 28.
func FormatPercent(f float64) string {
	return strconv.Itoa(int(math.Floor(f*100+1e-9))) + "%"
}

// FormatRate formats a tokens-per-minute burn rate, e.g. "2.1k/m".
func FormatRate(tokensPerMin float64) string {
	if tokensPerMin >= 1000 {
		return strconv.FormatFloat(tokensPerMin/1000, 'f', 1, 64) + "k/m"
	}
	return strconv.FormatFloat(tokensPerMin, 'f', 0, 64) + "/m"
}
