package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/theirongolddev/burnline/internal/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litellmDoc = `{
  "sample_spec": {"input_cost_per_token": "n/a"},
  "gpt-4o": {"input_cost_per_token": 0.0000025, "output_cost_per_token": 0.00001},
  "claude-opus-4-5": {
    "input_cost_per_token": 0.000005,
    "output_cost_per_token": 0.000025,
    "cache_creation_input_token_cost": 0.00000625,
    "cache_read_input_token_cost": 0.0000005
  },
  "anthropic/claude-haiku-4-5": {"input_cost_per_token": 0.000001, "output_cost_per_token": 0.000005},
  "claude-broken": {"input_cost_per_token": "free"}
}`

func TestParsePricing(t *testing.T) {
	table, err := ParsePricing([]byte(litellmDoc))
	require.NoError(t, err)
	require.Len(t, table, 2)

	opus := table["claude-opus-4-5"]
	assert.InDelta(t, 5.0, opus.InputPerMTok, 1e-9)
	assert.InDelta(t, 25.0, opus.OutputPerMTok, 1e-9)
	assert.InDelta(t, 6.25, opus.CacheWritePerMTok, 1e-9)
	assert.InDelta(t, 0.5, opus.CacheReadPerMTok, 1e-9)

	haiku, ok := table.Lookup("claude-haiku-4-5-20251001")
	require.True(t, ok)
	assert.InDelta(t, 1.0, haiku.InputPerMTok, 1e-9)
	assert.Zero(t, haiku.CacheReadPerMTok)

	_, err = ParsePricing([]byte(`{"gpt-4o": {}}`))
	assert.Error(t, err)
}

func TestPricingFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(litellmDoc))
	}))
	defer srv.Close()

	table, err := PricingFetcher{URL: srv.URL}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, table, "claude-opus-4-5")

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()
	_, err = PricingFetcher{URL: bad.URL}.Fetch(context.Background())
	assert.ErrorContains(t, err, "404")
}

func TestLimitsFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"five_hour":{"utilization":50},"seven_day":{"utilization":20}}`))
	}))
	defer srv.Close()

	good := credential.Env{Var: "T", Getenv: func(string) string { return "good" }}
	status, err := LimitsFetcher{Credentials: good, URL: srv.URL}.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.FiveHour)
	assert.InDelta(t, 0.5, status.FiveHour.Pct, 1e-9)

	none := credential.Env{Var: "T", Getenv: func(string) string { return "" }}
	_, err = LimitsFetcher{Credentials: none, URL: srv.URL}.Fetch(context.Background())
	assert.ErrorIs(t, err, credential.ErrNoToken)

	wrong := credential.Env{Var: "T", Getenv: func(string) string { return "bad" }}
	_, err = LimitsFetcher{Credentials: wrong, URL: srv.URL}.Fetch(context.Background())
	assert.Error(t, err)
}

func TestParseSpend_Shapes(t *testing.T) {
	cases := map[string]string{
		"array": `[{"date":"2026-10-18","totalCost":1.5},{"date":"2026-10-19","totalCost":2}]`,
		"daily": `{"daily":[{"date":"2026-10-18","totalCost":1.5},{"date":"2026-10-19","cost":2}],"totals":{}}`,
		"data":  `{"data":[{"date":"2026-10-19","totalCost":2},{"date":"2026-10-18","totalCost":1.5}]}`,
		"projects": `{"projects":{
			"api":[{"date":"2026-10-18","totalCost":1.0},{"date":"2026-10-19","totalCost":0.5}],
			"web":[{"date":"2026-10-18","totalCost":0.5},{"date":"2026-10-19","totalCost":1.5}]}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			days, err := ParseSpend([]byte(in))
			require.NoError(t, err)
			require.Len(t, days, 2)
			assert.Equal(t, "2026-10-18", days[0].Date)
			assert.InDelta(t, 1.5, days[0].Cost, 1e-9)
			assert.Equal(t, "2026-10-19", days[1].Date)
			assert.InDelta(t, 2.0, days[1].Cost, 1e-9)
		})
	}
}

func TestParseSpend_SkipsBadEntries(t *testing.T) {
	days, err := ParseSpend([]byte(`[{"date":"Oct 19","totalCost":1},{"date":"2026-10-19"},"junk",{"date":"2026-10-19","cost":0.25}]`))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.InDelta(t, 0.25, days[0].Cost, 1e-9)

	_, err = ParseSpend([]byte(`ccusage: command failed`))
	assert.Error(t, err)
}

func TestSpendFetcher_CommandFallbackAndArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	f := SpendFetcher{
		LookPath: func(name string) (string, error) {
			if name == "bunx" {
				return "/usr/bin/bunx", nil
			}
			return "", exec.ErrNotFound
		},
		Run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return []byte(`[{"date":"2026-10-19","totalCost":4.2}]`), nil
		},
		Now: func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local) },
	}

	days, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)

	assert.Equal(t, "bunx", gotName)
	assert.Equal(t, []string{
		"ccusage", "daily", "--json", "--instances",
		"--since", "20260920", "--until", "20261019",
		"--mode", "calculate",
	}, gotArgs)
}

func TestSpendFetcher_NoCommand(t *testing.T) {
	f := SpendFetcher{LookPath: func(string) (string, error) { return "", exec.ErrNotFound }}
	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoSpendCommand)
}

func TestSpendFetcher_ExplicitCommandAndFailure(t *testing.T) {
	f := SpendFetcher{
		Command: []string{"/opt/ccusage"},
		Run: func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
	}
	_, err := f.Fetch(context.Background())
	assert.ErrorContains(t, err, "/opt/ccusage")
}
