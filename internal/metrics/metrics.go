package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the service. Each collector owns
// its registry so tests can build as many as they like. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ProjectsCreated      prometheus.Counter
	Generations          *prometheus.CounterVec
	GenerationDuration   prometheus.Histogram
	SectionRegenerations *prometheus.CounterVec
	QueueRejections      prometheus.Counter
	StaleSwept           prometheus.Counter

	LLMRequests *prometheus.CounterVec
	LLMDuration prometheus.Histogram
}

// NewCollector creates a collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ProjectsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projects_created_total",
				Help:      "Total number of projects submitted",
			},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Background generations by terminal status",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time from generating to a terminal status",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
		SectionRegenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "section_regenerations_total",
				Help:      "Section regenerations by section and outcome",
			},
			[]string{"section", "outcome"},
		),
		QueueRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_queue_rejections_total",
				Help:      "Generation jobs the worker pool refused",
			},
		),
		StaleSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_generations_swept_total",
				Help:      "Generating projects marked as failed by the sweeper",
			},
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Chat completion calls by outcome",
			},
			[]string{"outcome"},
		),
		LLMDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Chat completion latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ProjectsCreated,
		c.Generations,
		c.GenerationDuration,
		c.SectionRegenerations,
		c.QueueRejections,
		c.StaleSwept,
		c.LLMRequests,
		c.LLMDuration,
	)
	return c
}

// Registry exposes the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordProjectCreated() {
	if c == nil {
		return
	}
	c.ProjectsCreated.Inc()
}

// RecordGeneration counts a background generation that reached status
func (c *Collector) RecordGeneration(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.Generations.WithLabelValues(status).Inc()
	c.GenerationDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordSectionRegeneration(section string, err error) {
	if c == nil {
		return
	}
	c.SectionRegenerations.WithLabelValues(section, outcome(err)).Inc()
}

func (c *Collector) RecordQueueRejection() {
	if c == nil {
		return
	}
	c.QueueRejections.Inc()
}

func (c *Collector) RecordStaleSwept(n int) {
	if c == nil {
		return
	}
	c.StaleSwept.Add(float64(n))
}

func (c *Collector) RecordLLMRequest(err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.LLMRequests.WithLabelValues(outcome(err)).Inc()
	c.LLMDuration.Observe(duration.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
