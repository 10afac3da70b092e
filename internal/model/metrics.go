package model

// CostSource tells where a request cost figure came from.
type CostSource int

// Cost sources.
const (
	CostNone CostSource = iota
	CostPricing
	CostSnapshot
)

func (c CostSource) String() string {
	switch c {
	case CostPricing:
		return "pricing"
	case CostSnapshot:
		return "snapshot"
	}
	return "none"
}

// ContextUsage is the derived view of a snapshot's context window.
type ContextUsage struct {
	Consumed  int64
	Window    int64
	Buffer    int64
	Effective int64
	Fraction  float64 // clamped to 0.0-1.0
	Remaining int64   // true remainder, negative on overshoot
	Overshoot bool
	Known     bool // false when the snapshot had no usage

	RequestCost float64
	CostSource  CostSource

	TokensPerMin float64
	CostPerHour  float64
	HasBurnRate  bool
}

// Percent returns the clamped fraction as 0-100.
func (c ContextUsage) Percent() float64 {
	return c.Fraction * 100
}

// DayStats summarizes one calendar day of the session log.
type DayStats struct {
	Date      string
	MaxCost   float64
	MaxTokens int64
	Projects  []string
}

// LogSummary is the session-log digest printed by --stats.
type LogSummary struct {
	Entries  int
	Sessions int
	Total    float64
	Days     []DayStats // last seven logged days, oldest first
}
