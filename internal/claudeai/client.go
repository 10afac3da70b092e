// Package claudeai provides a client for the Anthropic OAuth usage endpoint
// that reports subscription rate-limit windows.
package claudeai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/burnline/internal/model"

	"github.com/bytedance/sonic"
)

const (
	// DefaultURL is the OAuth usage endpoint.
	DefaultURL     = "https://api.anthropic.com/api/oauth/usage"
	betaHeader     = "oauth-2025-04-20"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the OAuth token is expired or invalid.
	ErrUnauthorized = errors.New("claudeai: unauthorized (oauth token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("claudeai: rate limited")
)

// Client fetches rate-limit windows from the OAuth usage API.
type Client struct {
	token string
	url   string
	http  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithURL points the client at a different usage endpoint.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given OAuth token.
// Returns nil if the token is empty.
func NewClient(token string, opts ...Option) *Client {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	c := &Client{
		token: token,
		url:   DefaultURL,
		http:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUsage returns the parsed rate-limit windows.
func (c *Client) FetchUsage(ctx context.Context) (*model.RateLimitStatus, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	var raw UsageResponse
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("claudeai: parsing usage: %w", err)
	}

	return &model.RateLimitStatus{
		FiveHour:       parseWindow(raw.FiveHour),
		SevenDay:       parseWindow(raw.SevenDay),
		SevenDayOpus:   parseWindow(raw.SevenDayOpus),
		SevenDaySonnet: parseWindow(raw.SevenDaySonnet),
		SevenDayHaiku:  parseWindow(raw.SevenDayHaiku),
	}, nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("claudeai: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("anthropic-beta", betaHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "burnline/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claudeai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("claudeai: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("claudeai: reading response: %w", err)
	}
	return body, nil
}

// parseWindow converts a raw UsageWindow into a normalized model.Window.
// Returns nil if the input is nil or unparseable.
func parseWindow(w *UsageWindow) *model.Window {
	if w == nil {
		return nil
	}

	pct, ok := parseUtilization(w.Utilization)
	if !ok {
		return nil
	}

	pw := &model.Window{Pct: pct}

	if w.ResetsAt != nil {
		if t, err := time.Parse(time.RFC3339, *w.ResetsAt); err == nil {
			pw.ResetsAt = t
		}
	}

	return pw
}

// parseUtilization defensively parses the polymorphic utilization field.
// Handles int (75), float (75.0) and string ("75%" or "75"). The endpoint
// reports percentages; the result is a 0.0-1.0 fraction.
func parseUtilization(raw []byte) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	// Try number first (covers both int and float JSON)
	var f float64
	if err := sonic.Unmarshal(raw, &f); err == nil {
		return normalizeUtilization(f), true
	}

	var s string
	if err := sonic.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return normalizeUtilization(v), true
		}
	}

	return 0, false
}

func normalizeUtilization(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v / 100.0
}
