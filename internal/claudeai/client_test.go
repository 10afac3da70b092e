package claudeai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_EmptyToken(t *testing.T) {
	assert.Nil(t, NewClient("  "))
	assert.NotNil(t, NewClient("sk-ant-oat01-x"))
}

func TestFetchUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "oauth-2025-04-20", r.Header.Get("anthropic-beta"))
		_, _ = w.Write([]byte(`{
			"five_hour": {"utilization": 42, "resets_at": "2026-10-19T15:00:00Z"},
			"seven_day": {"utilization": 30.5, "resets_at": null},
			"seven_day_opus": {"utilization": "45%"},
			"seven_day_sonnet": {"utilization": "bogus"},
			"seven_day_haiku": null
		}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithURL(srv.URL))
	got, err := c.FetchUsage(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got.FiveHour)
	assert.InDelta(t, 0.42, got.FiveHour.Pct, 1e-9)
	assert.Equal(t, time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), got.FiveHour.ResetsAt)

	require.NotNil(t, got.SevenDay)
	assert.InDelta(t, 0.305, got.SevenDay.Pct, 1e-9)
	assert.True(t, got.SevenDay.ResetsAt.IsZero())

	require.NotNil(t, got.SevenDayOpus)
	assert.InDelta(t, 0.45, got.SevenDayOpus.Pct, 1e-9)
	assert.Nil(t, got.SevenDaySonnet)
	assert.Nil(t, got.SevenDayHaiku)
}

func TestFetchUsage_StatusErrors(t *testing.T) {
	for status, want := range map[int]error{
		http.StatusUnauthorized:    ErrUnauthorized,
		http.StatusForbidden:       ErrUnauthorized,
		http.StatusTooManyRequests: ErrRateLimited,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := NewClient("tok", WithURL(srv.URL)).FetchUsage(context.Background())
		assert.ErrorIs(t, err, want, "status %d", status)
		srv.Close()
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := NewClient("tok", WithURL(srv.URL)).FetchUsage(context.Background())
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestParseUtilization(t *testing.T) {
	cases := map[string]float64{
		`75`:     0.75,
		`0.5`:    0.005,
		`"80%"`:  0.80,
		`" 12 "`: 0.12,
		`-3`:     0,
	}
	for in, want := range cases {
		got, ok := parseUtilization([]byte(in))
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	for _, in := range []string{``, `null`, `"n/a"`, `{}`} {
		_, ok := parseUtilization([]byte(in))
		assert.False(t, ok, in)
	}
}
