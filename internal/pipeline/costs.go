package pipeline

import (
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/model"
)

// referenceWindow is the window size the configured buffer is expressed against.
const referenceWindow = 200_000

// UsageOptions parameterizes Calculate.
type UsageOptions struct {
	Buffer200k int64
	Pricing    config.PricingTable // nil when pricing is unavailable
}

// Calculate derives context-window usage, a request cost estimate and burn
// rates from a snapshot.
func Calculate(snap model.Snapshot, opts UsageOptions) model.ContextUsage {
	u := model.ContextUsage{Window: snap.Window()}
	u.Buffer = opts.Buffer200k * u.Window / referenceWindow
	u.Effective = u.Window - u.Buffer
	if u.Effective < 1 {
		u.Effective = 1
	}

	if snap.HasUsage {
		u.Known = true
		u.Consumed = snap.Usage.Total()
		u.Remaining = u.Effective - u.Consumed
		u.Overshoot = u.Remaining < 0
		u.Fraction = clamp01(float64(u.Consumed) / float64(u.Effective))
	}

	if p, ok := opts.Pricing.Lookup(snap.ModelID); ok && snap.HasUsage {
		us := snap.Usage
		u.RequestCost = p.CalculateCost(us.Input, us.Output, us.CacheCreation, us.CacheRead)
		u.CostSource = model.CostPricing
	} else if snap.HasCost {
		u.RequestCost = snap.CostUSD
		u.CostSource = model.CostSnapshot
	}

	if snap.HasDur && snap.Duration >= 60_000 {
		mins := float64(snap.Duration) / 60_000
		if tokens := snap.TotalInputTokens + snap.TotalOutputTokens; tokens > 0 {
			u.TokensPerMin = float64(tokens) / mins
			u.HasBurnRate = true
		}
		if snap.HasCost {
			u.CostPerHour = snap.CostUSD / (mins / 60)
			u.HasBurnRate = true
		}
	}

	return u
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
