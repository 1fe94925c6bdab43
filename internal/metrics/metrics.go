package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"DocumentTonality/internal/domain"
)

const namespace = "documenttonality"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// PipelineMetrics holds Prometheus metrics for the document pipeline and the dispatch loop.
// All methods are safe on a nil receiver.
type PipelineMetrics struct {
	Runs            *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	Deliveries      *prometheus.CounterVec
	BatchSize       prometheus.Histogram
	MessagesSkipped prometheus.Counter
}

// NewPipelineMetrics creates and registers pipeline metrics on the given registry.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs, by terminal status.",
		}, []string{"status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of callback deliveries, by outcome.",
		}, []string{"outcome"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of well-formed work items dispatched per poll.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10},
		}),
		MessagesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_skipped_total",
			Help:      "Total number of malformed queue messages dropped without processing.",
		}),
	}

	reg.MustRegister(m.Runs, m.StageDuration, m.Deliveries, m.BatchSize, m.MessagesSkipped)
	return m
}

// ObserveStage records how long a stage took since start.
func (m *PipelineMetrics) ObserveStage(stage domain.Stage, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

// RecordRun counts a finished pipeline run and its delivery outcome.
func (m *PipelineMetrics) RecordRun(status domain.Status, outcome domain.DeliveryOutcome) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(string(status)).Inc()
	if outcome.Delivered {
		m.Deliveries.WithLabelValues("delivered").Inc()
		return
	}
	m.Deliveries.WithLabelValues("failed").Inc()
}

// RecordBatch records the size of a dispatched batch.
func (m *PipelineMetrics) RecordBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

// RecordSkipped counts a dropped malformed message.
func (m *PipelineMetrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.MessagesSkipped.Inc()
}
