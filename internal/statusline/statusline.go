// Package statusline runs one statusline invocation: read the snapshot,
// gather source data, compute usage, render two lines and log the session.
package statusline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/theirongolddev/burnline/internal/cache"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/layout"
	"github.com/theirongolddev/burnline/internal/metrics"
	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/pipeline"
	"github.com/theirongolddev/burnline/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxSnapshot caps how much of stdin is read.
const maxSnapshot = 1 << 20

// Log write results, for metrics.
const (
	LogWritten = "written"
	LogSkipped = "skipped"
	LogFailed  = "failed"
)

// Options configures a Runner. Zero values fall back to production wiring.
type Options struct {
	Config  config.Config
	Width   int // resolved terminal width
	NoLog   bool
	Sources *Sources
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Runner renders the statusline.
type Runner struct {
	cfg      config.Config
	width    int
	noLog    bool
	log      *zap.Logger
	metrics  *metrics.Metrics
	store    *cache.Store
	adapters Adapters
	now      func() time.Time
}

// New builds a Runner. A cache directory that cannot be created disables
// caching rather than failing.
func New(opts Options) *Runner {
	r := &Runner{
		cfg:     opts.Config,
		width:   opts.Width,
		noLog:   opts.NoLog,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.width <= 0 {
		r.width = layout.DefaultWidth
	}

	st, err := cache.Open(r.cfg.Cache.Dir, cache.WithClock(r.now))
	if err != nil {
		r.log.Debug("cache disabled", zap.Error(err))
	} else {
		r.store = st
	}

	src := DefaultSources(r.cfg)
	if opts.Sources != nil {
		src = *opts.Sources
	}
	r.adapters = NewAdapters(r.cfg, src, r.store, r.log, r.metrics)
	return r
}

// Data is the source data for one render. A nil field was unavailable.
type Data struct {
	Pricing config.PricingTable
	Limits  *model.RateLimitStatus
	Spend   []model.DailySpend
	// SpendOK distinguishes an empty spend history from an unavailable one.
	SpendOK bool
}

// Gather runs the three adapters concurrently.
func (r *Runner) Gather(ctx context.Context) Data {
	var d Data
	var g errgroup.Group
	g.Go(func() error {
		if res, err := r.adapters.Pricing.Fetch(ctx); err == nil {
			d.Pricing = res.Data
		}
		return nil
	})
	g.Go(func() error {
		if res, err := r.adapters.Limits.Fetch(ctx); err == nil {
			d.Limits = &res.Data
		}
		return nil
	})
	g.Go(func() error {
		if res, err := r.adapters.Spend.Fetch(ctx); err == nil {
			d.Spend, d.SpendOK = res.Data, true
		}
		return nil
	})
	_ = g.Wait()
	return d
}

// Run reads a snapshot from stdin and writes exactly two lines to stdout.
func (r *Runner) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	raw, err := io.ReadAll(io.LimitReader(stdin, maxSnapshot))
	if err != nil {
		r.log.Debug("reading stdin", zap.Error(err))
	}
	snap, err := model.ParseSnapshot(raw)
	if err != nil {
		r.log.Debug("malformed snapshot", zap.Error(err), zap.Int("bytes", len(raw)))
	}

	logged := make(chan struct{})
	go func() {
		defer close(logged)
		r.logSession(snap)
	}()

	data := r.Gather(ctx)
	lines := r.render(snap, data)

	_, werr := io.WriteString(stdout, lines.String())
	<-logged

	if path := r.cfg.Metrics.Textfile; path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			r.log.Debug("writing metrics textfile", zap.Error(err))
		}
	}
	return werr
}

// render never panics; a failure yields placeholder lines.
func (r *Runner) render(snap model.Snapshot, data Data) (lines layout.Lines) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("render panic", zap.String("panic", fmt.Sprint(p)))
			lines = layout.PlaceholderLines()
		}
	}()

	usage := pipeline.Calculate(snap, pipeline.UsageOptions{
		Buffer200k: r.cfg.Cache.Buffer200k,
		Pricing:    r.cfg.Pricing.Merge(data.Pricing),
	})

	frame := layout.Frame{
		Snapshot: snap,
		Usage:    usage,
		Limits:   data.Limits,
		Now:      r.now(),
	}
	if data.SpendOK {
		report := pipeline.SummarizeSpend(data.Spend, frame.Now)
		frame.Spend = &report
	}

	mode := layout.SelectMode(r.width, r.cfg.Thresholds)
	r.metrics.SetLayout(mode.String(), layout.ModeNames()...)
	r.log.Debug("rendering",
		zap.String("mode", mode.String()),
		zap.Int("width", r.width),
		zap.Float64("context_fraction", usage.Fraction),
		zap.Stringer("cost_source", usage.CostSource),
	)
	return layout.Render(frame, mode, layout.NewStyle(r.cfg))
}

// logSession appends the invocation to the session log. Failures are
// swallowed.
func (r *Runner) logSession(snap model.Snapshot) {
	if r.noLog || (!snap.HasModel() && !snap.HasCost) {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Debug("session log panic", zap.String("panic", fmt.Sprint(p)))
		}
	}()

	l, err := store.Open(r.cfg.SessionDBPath(), r.cfg.Log.SessionMax)
	if err != nil {
		r.log.Debug("opening session log", zap.Error(err))
		r.metrics.SessionLogWrite(LogFailed)
		return
	}
	defer func() { _ = l.Close() }()

	err = l.Append(Record(snap, r.now()))
	switch {
	case err == nil:
		r.metrics.SessionLogWrite(LogWritten)
	case errors.Is(err, store.ErrSkipped):
		r.metrics.SessionLogWrite(LogSkipped)
	default:
		r.log.Debug("appending session record", zap.Error(err))
		r.metrics.SessionLogWrite(LogFailed)
	}
}

// Record converts a snapshot into a session-log record.
func Record(snap model.Snapshot, now time.Time) model.SessionRecord {
	tokens := snap.TotalInputTokens + snap.TotalOutputTokens
	if tokens == 0 && snap.HasUsage {
		tokens = snap.Usage.Total()
	}
	return model.SessionRecord{
		Time:       now,
		Family:     model.DetectFamily(snap.ModelID + " " + snap.ModelName),
		Cost:       snap.CostUSD,
		Tokens:     tokens,
		DurationMS: snap.Duration,
		Project:    snap.Project,
		SessionID:  snap.SessionID,
	}
}
