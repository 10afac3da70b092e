package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/bytedance/sonic"
)

// The LiteLLM price list covers every provider and runs to a few MB.
const maxPricingBody = 16 << 20

// PricingFetcher downloads the LiteLLM model price list and keeps the
// Claude entries, converted to per-million-token prices.
type PricingFetcher struct {
	URL  string
	HTTP *http.Client
}

type litellmEntry struct {
	InputCostPerToken  *float64 `json:"input_cost_per_token"`
	OutputCostPerToken *float64 `json:"output_cost_per_token"`
	CacheWriteCost     *float64 `json:"cache_creation_input_token_cost"`
	CacheReadCost      *float64 `json:"cache_read_input_token_cost"`
}

// Fetch implements Fetcher.
func (f PricingFetcher) Fetch(ctx context.Context) (config.PricingTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("pricing: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricing: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPricingBody))
	if err != nil {
		return nil, fmt.Errorf("pricing: reading response: %w", err)
	}
	return ParsePricing(body)
}

// ParsePricing extracts Claude model prices from a LiteLLM price document.
func ParsePricing(body []byte) (config.PricingTable, error) {
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("pricing: parsing: %w", err)
	}

	table := make(config.PricingTable)
	for name, entry := range raw {
		if !strings.Contains(strings.ToLower(name), "claude") {
			continue
		}
		var e litellmEntry
		if err := sonic.Unmarshal(entry, &e); err != nil {
			continue
		}
		if e.InputCostPerToken == nil || e.OutputCostPerToken == nil {
			continue
		}
		table[name] = config.ModelPricing{
			InputPerMTok:      perMTok(e.InputCostPerToken),
			OutputPerMTok:     perMTok(e.OutputCostPerToken),
			CacheWritePerMTok: perMTok(e.CacheWriteCost),
			CacheReadPerMTok:  perMTok(e.CacheReadCost),
		}
	}
	if len(table) == 0 {
		return nil, errors.New("pricing: no claude models in price list")
	}
	return table, nil
}

func perMTok(perToken *float64) float64 {
	if perToken == nil {
		return 0
	}
	return *perToken * 1_000_000
}
