package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theirongolddev/burnline/internal/claudeai"
	"github.com/theirongolddev/burnline/internal/credential"
	"github.com/theirongolddev/burnline/internal/model"
)

// LimitsFetcher resolves an OAuth token and queries the usage endpoint.
type LimitsFetcher struct {
	Credentials credential.Provider
	URL         string
	HTTP        *http.Client
}

// Fetch implements Fetcher.
func (f LimitsFetcher) Fetch(ctx context.Context) (model.RateLimitStatus, error) {
	if f.Credentials == nil {
		return model.RateLimitStatus{}, credential.ErrNoToken
	}
	token, err := f.Credentials.Token(ctx)
	if err != nil {
		return model.RateLimitStatus{}, fmt.Errorf("limits: %w", err)
	}

	opts := []claudeai.Option{claudeai.WithURL(f.URL)}
	if f.HTTP != nil {
		opts = append(opts, claudeai.WithHTTPClient(f.HTTP))
	}
	client := claudeai.NewClient(token, opts...)
	if client == nil {
		return model.RateLimitStatus{}, credential.ErrNoToken
	}

	status, err := client.FetchUsage(ctx)
	if err != nil {
		return model.RateLimitStatus{}, err
	}
	return *status, nil
}
