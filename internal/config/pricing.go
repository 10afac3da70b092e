package config

import (
	"strings"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok      float64 `json:"input"`
	OutputPerMTok     float64 `json:"output"`
	CacheWritePerMTok float64 `json:"cache_write"`
	CacheReadPerMTok  float64 `json:"cache_read"`
}

// PricingTable maps model identifiers to their pricing.
type PricingTable map[string]ModelPricing

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides. Unset fields keep
// the upstream price.
type ModelPricingOverride struct {
	InputPerMTok      *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok     *float64 `toml:"output_per_mtok,omitempty"`
	CacheWritePerMTok *float64 `toml:"cache_write_per_mtok,omitempty"`
	CacheReadPerMTok  *float64 `toml:"cache_read_per_mtok,omitempty"`
}

// Merge returns a copy of table with the overrides applied. A nil table with
// no overrides stays nil, meaning no pricing is available.
func (p PricingOverrides) Merge(table PricingTable) PricingTable {
	if len(p.Overrides) == 0 {
		return table
	}
	merged := make(PricingTable, len(table)+len(p.Overrides))
	for k, v := range table {
		merged[k] = v
	}
	for modelName, o := range p.Overrides {
		base, _ := merged.Lookup(modelName)
		if o.InputPerMTok != nil {
			base.InputPerMTok = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			base.OutputPerMTok = *o.OutputPerMTok
		}
		if o.CacheWritePerMTok != nil {
			base.CacheWritePerMTok = *o.CacheWritePerMTok
		}
		if o.CacheReadPerMTok != nil {
			base.CacheReadPerMTok = *o.CacheReadPerMTok
		}
		merged[modelName] = base
	}
	return merged
}

// NormalizeModelName strips date suffixes from model identifiers.
// e.g., "claude-opus-4-5-20251101" -> "claude-opus-4-5"
func NormalizeModelName(raw string) string {
	parts := strings.Split(raw, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			return strings.Join(parts[:len(parts)-1], "-")
		}
	}
	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Lookup returns the pricing for a model id, trying the id as given, its
// normalized form and their "anthropic/" prefixed variants.
func (t PricingTable) Lookup(modelID string) (ModelPricing, bool) {
	if len(t) == 0 || modelID == "" {
		return ModelPricing{}, false
	}
	normalized := NormalizeModelName(modelID)
	for _, key := range []string{
		modelID,
		normalized,
		"anthropic/" + modelID,
		"anthropic/" + normalized,
	} {
		if p, ok := t[key]; ok {
			return p, true
		}
	}
	return ModelPricing{}, false
}

// CalculateCost computes the estimated cost in USD for a single API call.
func (p ModelPricing) CalculateCost(inputTokens, outputTokens, cacheWrite, cacheRead int64) float64 {
	cost := float64(inputTokens) * p.InputPerMTok / 1_000_000
	cost += float64(outputTokens) * p.OutputPerMTok / 1_000_000
	cost += float64(cacheWrite) * p.CacheWritePerMTok / 1_000_000
	cost += float64(cacheRead) * p.CacheReadPerMTok / 1_000_000
	return cost
}
