// Package metrics records per-invocation diagnostics in a private Prometheus
// registry that can be exported to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "burnline"

// Fetch outcomes.
const (
	OutcomeFresh       = "fresh"
	OutcomeLive        = "live"
	OutcomeStale       = "stale"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds burnline's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	reg *prometheus.Registry

	SourceFetchTotal    *prometheus.CounterVec
	SourceFetchDuration *prometheus.HistogramVec
	LayoutMode          *prometheus.GaugeVec
	SessionLogWrites    *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		SourceFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetch_total",
				Help:      "Source adapter results by outcome",
			},
			[]string{"source", "outcome"},
		),
		SourceFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "source_fetch_duration_seconds",
				Help:      "Live fetch duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		LayoutMode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "layout_mode",
				Help:      "Layout mode chosen for the last render (1 = active)",
			},
			[]string{"mode"},
		),
		SessionLogWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_log_writes_total",
				Help:      "Session log append attempts by result",
			},
			[]string{"result"}, // "written" / "skipped" / "failed"
		),
	}
	m.reg.MustRegister(m.SourceFetchTotal, m.SourceFetchDuration, m.LayoutMode, m.SessionLogWrites)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveFetch records one adapter call. d is zero when no live fetch ran.
func (m *Metrics) ObserveFetch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetchTotal.WithLabelValues(source, outcome).Inc()
	if d > 0 {
		m.SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
	}
}

// SetLayout marks mode as the active layout.
func (m *Metrics) SetLayout(mode string, all ...string) {
	if m == nil {
		return
	}
	for _, other := range all {
		m.LayoutMode.WithLabelValues(other).Set(0)
	}
	m.LayoutMode.WithLabelValues(mode).Set(1)
}

// SessionLogWrite counts one session-log append attempt.
func (m *Metrics) SessionLogWrite(result string) {
	if m == nil {
		return
	}
	m.SessionLogWrites.WithLabelValues(result).Inc()
}

// WriteTextfile exports the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
