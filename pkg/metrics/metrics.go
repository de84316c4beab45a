// Package metrics holds the Prometheus collectors of a pipeline run. A batch
// run has no scrape endpoint, so the registry is written out as a textfile
// for the node exporter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

const namespace = "tripjanitor"

// Metrics holds the counters and histograms of one run.
type Metrics struct {
	Files         *prometheus.CounterVec   // labels: stage={clean,enrich}, outcome={ok,skip,fail}
	RowsRead      *prometheus.CounterVec   // labels: service
	RowsWritten   *prometheus.CounterVec   // labels: stage
	RowsDropped   *prometheus.CounterVec   // labels: step
	StageDuration *prometheus.HistogramVec // labels: stage

	reg *prometheus.Registry
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files handled by stage and outcome.",
		}, []string{"stage", "outcome"}),
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Raw rows read per service.",
		}, []string{"service"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written per stage.",
		}, []string{"stage"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed by each cleaning step.",
		}, []string{"step"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one clean or enrich stage for one file.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		reg: prometheus.NewRegistry(),
	}
	m.reg.MustRegister(m.Files, m.RowsRead, m.RowsWritten, m.RowsDropped, m.StageDuration)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// StepObserver counts the rows each pipeline step drops.
func (m *Metrics) StepObserver() j.StepObserver {
	return func(step string, in, out int) {
		if in > out {
			m.RowsDropped.WithLabelValues(step).Add(float64(in - out))
		}
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
