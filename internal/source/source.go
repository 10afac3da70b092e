// Package source implements the cache-through adapters for the rate-limit,
// pricing and spend data sources.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/metrics"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ErrUnavailable is the only error an Adapter returns: no fresh data, no
// successful live fetch and no stale fallback.
var ErrUnavailable = errors.New("source: unavailable")

// Fetcher performs a live fetch from an upstream.
type Fetcher[T any] interface {
	Fetch(ctx context.Context) (T, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetch calls f(ctx).
func (f FetchFunc[T]) Fetch(ctx context.Context) (T, error) { return f(ctx) }

// Result is data returned by an Adapter together with how it was obtained.
type Result[T any] struct {
	Data      T
	Stale     bool
	FetchedAt time.Time
	Outcome   string // one of the metrics.Outcome* values
}

// Adapter serves a source through the cache store: fresh cache, else a
// bounded live fetch written through, else the stale entry, else
// ErrUnavailable.
type Adapter[T any] struct {
	Name    string // cache key and metric label
	TTL     time.Duration
	Timeout time.Duration
	Live    Fetcher[T]

	Store   *cache.Store // optional
	Logger  *zap.Logger  // optional
	Metrics *metrics.Metrics
}

// Fetch returns the best available data. It never panics.
func (a *Adapter[T]) Fetch(ctx context.Context) (Result[T], error) {
	log := a.logger()

	var stale *Result[T]
	if a.Store != nil {
		entry, freshness := a.Store.Read(a.Name)
		if freshness != cache.Miss {
			var v T
			if err := sonic.Unmarshal(entry.Payload, &v); err != nil {
				log.Debug("discarding undecodable cache entry", zap.Error(err))
			} else if freshness == cache.Fresh {
				a.Metrics.ObserveFetch(a.Name, metrics.OutcomeFresh, 0)
				return Result[T]{Data: v, FetchedAt: entry.FetchedAt, Outcome: metrics.OutcomeFresh}, nil
			} else {
				stale = &Result[T]{Data: v, Stale: true, FetchedAt: entry.FetchedAt, Outcome: metrics.OutcomeStale}
			}
		}
	}

	var elapsed time.Duration
	unlock, locked := func() {}, true
	if a.Store != nil {
		unlock, locked = a.Store.TryLock(a.Name)
	}
	if locked {
		defer unlock()
		start := time.Now()
		v, err := a.live(ctx)
		elapsed = time.Since(start)
		if err == nil {
			a.writeThrough(v)
			a.Metrics.ObserveFetch(a.Name, metrics.OutcomeLive, elapsed)
			return Result[T]{Data: v, FetchedAt: start, Outcome: metrics.OutcomeLive}, nil
		}
		log.Debug("live fetch failed", zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		log.Debug("refresh already in progress in another process")
	}

	if stale != nil {
		a.Metrics.ObserveFetch(a.Name, metrics.OutcomeStale, elapsed)
		return *stale, nil
	}
	a.Metrics.ObserveFetch(a.Name, metrics.OutcomeUnavailable, elapsed)
	var zero Result[T]
	return zero, ErrUnavailable
}

func (a *Adapter[T]) live(ctx context.Context) (v T, err error) {
	if a.Live == nil {
		return v, errors.New("no live fetcher")
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s fetcher: %v", a.Name, r)
		}
	}()
	return a.Live.Fetch(ctx)
}

func (a *Adapter[T]) writeThrough(v T) {
	if a.Store == nil {
		return
	}
	data, err := sonic.Marshal(v)
	if err == nil {
		err = a.Store.Write(a.Name, data, a.TTL)
	}
	if err != nil {
		a.logger().Debug("cache write failed", zap.Error(err))
	}
}

func (a *Adapter[T]) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger.With(zap.String("source", a.Name))
}
