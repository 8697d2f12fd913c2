// Package metrics provides Prometheus metrics for the analysis server
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tool invocation metrics
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariffscope_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tariffscope_tool_call_duration_seconds",
			Help:    "Time taken to serve tool invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Dataset metrics
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tariffscope_dataset_records",
			Help: "Number of records in the loaded portfolio dataset",
		},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariffscope_dataset_loads_total",
			Help: "Total number of dataset load attempts",
		},
		[]string{"source", "status"},
	)
)

// RecordToolCall records one tool invocation with its outcome status.
func RecordToolCall(tool, status string, duration time.Duration) {
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordDatasetLoad records a dataset load attempt.
func RecordDatasetLoad(source, status string, records int) {
	DatasetLoadsTotal.WithLabelValues(source, status).Inc()
	if status == "success" {
		DatasetRecords.Set(float64(records))
	}
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
