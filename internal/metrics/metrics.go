// Package metrics counts search pipeline activity from bus events.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"peoplesearch/internal/eventbus"
)

// Collector holds the pipeline metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	queries        prometheus.Counter
	pipelineRuns   *prometheus.CounterVec
	resultsLatency prometheus.Histogram
	resultCount    prometheus.Gauge
	datasetSize    prometheus.Gauge
	suspensions    prometheus.Counter
	resumes        *prometheus.CounterVec
	errors         prometheus.Counter
}

// New creates a collector with every metric registered
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peoplesearch_query_edits_total",
			Help: "Query edits received before debouncing",
		}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peoplesearch_pipeline_runs_total",
			Help: "Recompute passes started, by whether the query was filtered",
		}, []string{"filtered"}),
		resultsLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peoplesearch_results_latency_seconds",
			Help:    "Time from pass start to published results",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		resultCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peoplesearch_results",
			Help: "Size of the last published result list",
		}),
		datasetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peoplesearch_dataset_size",
			Help: "Size of the candidate set after the last change",
		}),
		suspensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peoplesearch_pipeline_suspensions_total",
			Help: "Times the grace window expired with no results subscriber",
		}),
		resumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peoplesearch_pipeline_resumes_total",
			Help: "Times a subscriber resumed a suspended pipeline",
		}, []string{"recomputed"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peoplesearch_errors_total",
			Help: "Error events",
		}),
	}
	c.registry.MustRegister(
		c.queries,
		c.pipelineRuns,
		c.resultsLatency,
		c.resultCount,
		c.datasetSize,
		c.suspensions,
		c.resumes,
		c.errors,
	)
	return c
}

// Registry exposes the collector's registry for gathering
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach feeds the collector from bus. It returns a detach function.
func (c *Collector) Attach(bus eventbus.EventBus) func() {
	return bus.SubscribeAll(c.Observe)
}

// Observe records one event
func (c *Collector) Observe(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.QueryChangedEvent:
		c.queries.Inc()
	case eventbus.PipelineStartedEvent:
		c.pipelineRuns.WithLabelValues(fmt.Sprint(ev.Filtered)).Inc()
	case eventbus.ResultsPublishedEvent:
		c.resultsLatency.Observe(ev.Duration.Seconds())
		c.resultCount.Set(float64(ev.Count))
	case eventbus.DatasetChangedEvent:
		c.datasetSize.Set(float64(ev.Count))
	case eventbus.PipelineSuspendedEvent:
		c.suspensions.Inc()
	case eventbus.PipelineResumedEvent:
		c.resumes.WithLabelValues(fmt.Sprint(ev.Recomputed)).Inc()
	case eventbus.ErrorEvent:
		c.errors.Inc()
	}
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// suitable for the node exporter textfile collector
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
