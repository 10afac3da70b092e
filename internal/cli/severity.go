package cli

import "github.com/theirongolddev/burnline/internal/config"

// Tier is a discrete severity level.
type Tier int

// Severity tiers, lowest first.
const (
	Normal Tier = iota
	Warn
	Critical
	Blink
)

func (t Tier) String() string {
	switch t {
	case Warn:
		return "warn"
	case Critical:
		return "critical"
	case Blink:
		return "blink"
	}
	return "normal"
}

// Severity maps a value onto a tier. Cutoffs are inclusive lower bounds; a
// zero blink cutoff disables the blink tier. The same mapping serves context
// percentages, rate-limit percentages and costs.
func Severity(v float64, t config.Thresholds) Tier {
	switch {
	case t.Blink > 0 && v >= t.Blink:
		return Blink
	case v >= t.Crit:
		return Critical
	case v >= t.Warn:
		return Warn
	}
	return Normal
}
