package statusline

import (
	"net/http"
	"runtime"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/credential"
	"github.com/theirongolddev/burnline/internal/metrics"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/source"

	"go.uber.org/zap"
)

// Cache keys, also used as metric source labels.
const (
	KeyPricing = "pricing"
	KeyLimits  = "limits"
	KeySpend   = "ccusage"
)

// Sources holds the live fetchers behind the three adapters.
type Sources struct {
	Pricing source.Fetcher[config.PricingTable]
	Limits  source.Fetcher[model.RateLimitStatus]
	Spend   source.Fetcher[[]model.DailySpend]
}

// DefaultSources wires the real upstreams from configuration.
func DefaultSources(cfg config.Config) Sources {
	client := &http.Client{}
	return Sources{
		Pricing: source.PricingFetcher{URL: cfg.Sources.PricingURL, HTTP: client},
		Limits: source.LimitsFetcher{
			Credentials: credential.ForPlatform(runtime.GOOS),
			URL:         cfg.Sources.LimitsURL,
			HTTP:        client,
		},
		Spend: source.SpendFetcher{Command: cfg.Sources.SpendCommand},
	}
}

// Adapters are the cache-through adapters for one invocation.
type Adapters struct {
	Pricing *source.Adapter[config.PricingTable]
	Limits  *source.Adapter[model.RateLimitStatus]
	Spend   *source.Adapter[[]model.DailySpend]
}

// NewAdapters wraps each source with the store using its configured TTL and
// timeout. store may be nil, which disables caching.
func NewAdapters(cfg config.Config, src Sources, store *cache.Store, log *zap.Logger, m *metrics.Metrics) Adapters {
	return Adapters{
		Pricing: &source.Adapter[config.PricingTable]{
			Name:    KeyPricing,
			TTL:     config.Seconds(cfg.Cache.PricingTTL),
			Timeout: config.Seconds(cfg.Timeouts.Pricing),
			Live:    src.Pricing,
			Store:   store,
			Logger:  log,
			Metrics: m,
		},
		Limits: &source.Adapter[model.RateLimitStatus]{
			Name:    KeyLimits,
			TTL:     config.Seconds(cfg.Cache.LimitsTTL),
			Timeout: config.Seconds(cfg.Timeouts.Limits),
			Live:    src.Limits,
			Store:   store,
			Logger:  log,
			Metrics: m,
		},
		Spend: &source.Adapter[[]model.DailySpend]{
			Name:    KeySpend,
			TTL:     config.Seconds(cfg.Cache.SpendTTL),
			Timeout: config.Seconds(cfg.Timeouts.Spend),
			Live:    src.Spend,
			Store:   store,
			Logger:  log,
			Metrics: m,
		},
	}
}
