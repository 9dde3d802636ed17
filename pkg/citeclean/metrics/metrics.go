// Package metrics exposes cleanup counters in Prometheus format. Each
// Metrics owns its registry so that tests and multiple runners never share
// state.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
	"github.com/cognicore/citeclean/pkg/citeclean/report"
)

type Metrics struct {
	reg *prometheus.Registry

	documents     *prometheus.CounterVec
	inlineRemoved prometheus.Counter
	linesDropped  prometheus.Counter
	bytes         *prometheus.CounterVec
	duration      prometheus.Histogram
	watchEvents   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citeclean_documents_total",
			Help: "Documents processed, by result (changed, unchanged, error).",
		}, []string{"result"}),
		inlineRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "citeclean_inline_citations_removed_total",
			Help: "Inline citation markers removed.",
		}),
		linesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "citeclean_reference_lines_dropped_total",
			Help: "Lines dropped with trailing reference sections.",
		}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "citeclean_bytes_total",
			Help: "Bytes read and written, by direction (in, out).",
		}, []string{"direction"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "citeclean_run_duration_seconds",
			Help:    "Time spent cleaning a single document.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
		}),
		watchEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "citeclean_watch_events_total",
			Help: "File system events handled in watch mode.",
		}),
	}
}

// Observe records one finished run.
func (m *Metrics) Observe(r report.Report, took time.Duration) {
	result := "unchanged"
	if r.Changed() {
		result = "changed"
	}
	m.documents.WithLabelValues(result).Inc()
	m.inlineRemoved.Add(float64(r.InlineRemoved))
	m.linesDropped.Add(float64(r.LinesDropped))
	m.bytes.WithLabelValues("in").Add(float64(r.InputBytes))
	m.bytes.WithLabelValues("out").Add(float64(r.OutputBytes))
	m.duration.Observe(took.Seconds())
}

// ObserveError counts a document that could not be processed.
func (m *Metrics) ObserveError() {
	m.documents.WithLabelValues("error").Inc()
}

// ObserveWatchEvent counts a debounced file change.
func (m *Metrics) ObserveWatchEvent() {
	m.watchEvents.Inc()
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// WriteTextfile writes the current values in the node_exporter textfile
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("%w: write metrics %s: %v", internalerr.ErrIO, path, err)
	}
	return nil
}
