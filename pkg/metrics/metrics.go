// Package metrics records what tidify runs do using Prometheus metrics.
//
// # Overview
//
// A Collector owns its own registry, so several runs (or tests) in one
// process never share counters. After a run the collected metrics can be
// written in the Prometheus text exposition format, for example to a file
// picked up by the node_exporter textfile collector.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("tidify")
//
//	timer := metrics.NewTimer("tidy")
//	table, err := tidy.Tidify(value, opts)
//	collector.ObserveStage("tidy", timer.Stop())
//	collector.AddRows("json", "csv", table.Len())
//
//	collector.WriteText(os.Stdout)
//
// # Metric Types
//
// Counter: runs, rows and collisions
// Gauge: column count of the last table
// Histogram: stage durations
package metrics

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Collector provides a metrics collection interface for tidify runs.
// It is safe for concurrent use.
type Collector struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec   // Runs by status
	rows          *prometheus.CounterVec   // Rows produced
	columns       *prometheus.GaugeVec     // Width of the last table
	collisions    prometheus.Counter       // Column collisions
	stageDuration *prometheus.HistogramVec // Per-stage latency
	startTime     time.Time
}

// NewCollector creates a collector whose metrics are prefixed with
// namespace.
//
// Example:
//
//	collector := metrics.NewCollector("tidify")
//	collector.RecordRun("success")
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of runs",
			},
			[]string{"status"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total number of table rows produced",
			},
			[]string{"source", "destination"},
		),
		columns: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "columns",
				Help:      "Number of columns in the last table",
			},
			[]string{"source", "destination"},
		),
		collisions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "column_collisions_total",
				Help:      "Total number of column name collisions while flattening",
			},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of run stages in seconds",
				Buckets: []float64{
					0.0001, // 100μs - tiny documents
					0.001,  // 1ms
					0.01,   // 10ms
					0.1,    // 100ms - typical API responses
					1,      // 1s - large documents, network stores
					10,     // 10s
					60,     // 1m - database loads
				},
			},
			[]string{"stage"},
		),
		startTime: time.Now(),
	}
}

// Registry returns the registry holding this collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// RecordRun counts a finished run with status "success" or "failure".
func (c *Collector) RecordRun(status string) {
	c.runs.WithLabelValues(status).Inc()
}

// AddRows counts produced rows.
func (c *Collector) AddRows(source, destination string, n int) {
	c.rows.WithLabelValues(source, destination).Add(float64(n))
}

// SetColumns records the width of the last table.
func (c *Collector) SetColumns(source, destination string, n int) {
	c.columns.WithLabelValues(source, destination).Set(float64(n))
}

// IncCollisions counts one column collision.
func (c *Collector) IncCollisions() {
	c.collisions.Inc()
}

// ObserveStage records how long a stage (read, tidy, write) took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteText writes every metric in the Prometheus text exposition format,
// sorted by metric name.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to gather metrics")
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write metrics")
		}
	}
	return nil
}

// WriteFile writes the metrics to path, replacing it atomically.
func (c *Collector) WriteFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create metrics file").
			WithDetail("path", path)
	}

	if err := c.WriteText(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to close metrics file").
			WithDetail("path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to move metrics file").
			WithDetail("path", path)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string { return t.name }

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
