// Package metric counts validation outcomes with Prometheus collectors and
// exports them in the node_exporter textfile format.
package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

const namespace = "mztab"

// Metrics holds the validation collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	FilesTotal    *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	RecordsTotal  *prometheus.CounterVec
	ParseDuration prometheus.Histogram
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "files_total",
				Help:      "Files validated, by outcome (valid, invalid, failed)",
			},
			[]string{"status"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "errors_total",
				Help:      "Reported errors by level and category",
			},
			[]string{"level", "category"},
		),

		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "records_total",
				Help:      "Data lines parsed, by section",
			},
			[]string{"section"},
		),

		ParseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Time to parse and check one file",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}
	m.registry.MustRegister(m.FilesTotal, m.ErrorsTotal, m.RecordsTotal, m.ParseDuration)
	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFile records one validated file. f may be nil when parsing failed.
func (m *Metrics) ObserveFile(status string, f *core.File, errs []*mzerror.Error, elapsed time.Duration) {
	m.FilesTotal.WithLabelValues(status).Inc()
	for _, e := range errs {
		m.ErrorsTotal.WithLabelValues(e.Type.Level.String(), e.Type.Category.String()).Inc()
	}
	if f != nil {
		for _, s := range f.Sections() {
			m.RecordsTotal.WithLabelValues(s.Name()).Add(float64(len(f.Records(s))))
		}
	}
	m.ParseDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every collector to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
