package querycache

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names
const (
	MetricFetchesTotal          = "jobpilot_query_fetches_total"
	MetricFetchDurationSeconds  = "jobpilot_query_fetch_duration_seconds"
	MetricInvalidationsTotal    = "jobpilot_query_invalidations_total"
	MetricRefetchesTotal        = "jobpilot_query_refetches_total"
	MetricInFlightFetches       = "jobpilot_query_in_flight_fetches"
	MetricSubscribers           = "jobpilot_query_subscribers"
	MetricEntries               = "jobpilot_query_entries"
	MetricBusPublishErrorsTotal = "jobpilot_invalidation_publish_errors_total"
)

// Metrics holds the query cache collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal       *prometheus.CounterVec
	fetchDuration      *prometheus.HistogramVec
	invalidationsTotal *prometheus.CounterVec
	refetchesTotal     prometheus.Counter
	inFlight           prometheus.Gauge
	subscribers        prometheus.Gauge
	entries            prometheus.Gauge
	publishErrors      prometheus.Counter
}

// NewMetrics registers the collectors on a new registry, along with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFetchesTotal,
			Help: "Upstream fetches issued by the query cache",
		}, []string{"query", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricFetchDurationSeconds,
			Help:    "Duration of query cache fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		invalidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInvalidationsTotal,
			Help: "Tag invalidations applied, by origin",
		}, []string{"source"}),
		refetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRefetchesTotal,
			Help: "Refetches started because of an invalidation",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricInFlightFetches,
			Help: "Fetches currently in flight",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricSubscribers,
			Help: "Open query subscriptions",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricEntries,
			Help: "Cached query entries",
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBusPublishErrorsTotal,
			Help: "Invalidations that could not be broadcast to peers",
		}),
	}

	registry.MustRegister(
		m.fetchesTotal,
		m.fetchDuration,
		m.invalidationsTotal,
		m.refetchesTotal,
		m.inFlight,
		m.subscribers,
		m.entries,
		m.publishErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the registry so other components can add collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeFetch(query string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.fetchesTotal.WithLabelValues(query, outcome).Inc()
	m.fetchDuration.WithLabelValues(query).Observe(d.Seconds())
}
