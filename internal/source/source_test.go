package source

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	N int `json:"n"`
}

type countingFetcher struct {
	calls atomic.Int32
	fn    func(ctx context.Context) (payload, error)
}

func (c *countingFetcher) Fetch(ctx context.Context) (payload, error) {
	c.calls.Add(1)
	return c.fn(ctx)
}

func newAdapter(t *testing.T, now *time.Time, fn func(context.Context) (payload, error)) (*Adapter[payload], *countingFetcher) {
	t.Helper()
	store, err := cache.Open(t.TempDir(), cache.WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	f := &countingFetcher{fn: fn}
	return &Adapter[payload]{
		Name:    "limits",
		TTL:     15 * time.Minute,
		Timeout: time.Second,
		Live:    f,
		Store:   store,
		Metrics: metrics.New(),
	}, f
}

func TestAdapter_LiveThenFreshFromCache(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a, f := newAdapter(t, &now, func(context.Context) (payload, error) { return payload{N: 7}, nil })

	res, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeLive, res.Outcome)
	assert.Equal(t, 7, res.Data.N)

	now = now.Add(10 * time.Minute)
	res, err = a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeFresh, res.Outcome)
	assert.Equal(t, 7, res.Data.N)
	assert.False(t, res.Stale)
	assert.Equal(t, int32(1), f.calls.Load(), "fresh read must not trigger a live fetch")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.SourceFetchTotal.WithLabelValues("limits", metrics.OutcomeFresh)))
}

func TestAdapter_StaleFallbackWhenLiveFails(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	fail := false
	a, _ := newAdapter(t, &now, func(context.Context) (payload, error) {
		if fail {
			return payload{}, errors.New("upstream down")
		}
		return payload{N: 3}, nil
	})

	_, err := a.Fetch(context.Background())
	require.NoError(t, err)

	fail = true
	now = now.Add(time.Hour)
	res, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, metrics.OutcomeStale, res.Outcome)
	assert.Equal(t, 3, res.Data.N)
}

func TestAdapter_UnavailableWithoutCache(t *testing.T) {
	now := time.Now()
	a, _ := newAdapter(t, &now, func(context.Context) (payload, error) {
		return payload{}, errors.New("no token")
	})

	_, err := a.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdapter_TimeoutBoundsLiveFetch(t *testing.T) {
	now := time.Now()
	a, _ := newAdapter(t, &now, func(ctx context.Context) (payload, error) {
		<-ctx.Done()
		return payload{}, ctx.Err()
	})
	a.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := a.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAdapter_RecoversFromPanickingFetcher(t *testing.T) {
	now := time.Now()
	a, _ := newAdapter(t, &now, func(context.Context) (payload, error) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		_, err := a.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestAdapter_LockHeldServesStaleWithoutFetching(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a, f := newAdapter(t, &now, func(context.Context) (payload, error) { return payload{N: 1}, nil })
	require.NoError(t, a.Store.Write("limits", []byte(`{"n":5}`), time.Minute))
	now = now.Add(time.Hour)

	unlock, ok := a.Store.TryLock("limits")
	require.True(t, ok)
	defer unlock()

	res, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, 5, res.Data.N)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestAdapter_CorruptPayloadIsRefetched(t *testing.T) {
	now := time.Now()
	a, f := newAdapter(t, &now, func(context.Context) (payload, error) { return payload{N: 9}, nil })
	require.NoError(t, a.Store.Write("limits", []byte(`not json`), time.Hour))

	res, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, res.Data.N)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestAdapter_WorksWithoutStore(t *testing.T) {
	a := &Adapter[payload]{
		Name: "spend",
		Live: FetchFunc[payload](func(context.Context) (payload, error) { return payload{N: 2}, nil }),
	}
	res, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Data.N)
}
