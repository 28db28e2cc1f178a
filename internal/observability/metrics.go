package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire_tracker"

// Metrics holds the Prometheus counters, histograms, and gauges for the tracker.
type Metrics struct {
	// Load cycle metrics.
	LoadsTotal            *prometheus.CounterVec // labels: trigger={auto,forced}, outcome={success,error,rate_limited,cancelled,superseded}
	LoadDuration          prometheus.Histogram
	EventsLoaded          prometheus.Gauge
	EventsMissingGeometry prometheus.Gauge
	LastSuccess           prometheus.Gauge

	// Upstream API metrics.
	ListAttempts  *prometheus.CounterVec   // labels: outcome={success,error,rate_limited,protocol}
	DetailFetches *prometheus.CounterVec   // labels: outcome={success,empty,error,rate_limited}
	APIRequests   *prometheus.CounterVec   // labels: endpoint={list,detail}, outcome={success,error,rate_limited}
	APIDuration   *prometheus.HistogramVec // labels: endpoint={list,detail}
	RetryWait     prometheus.Histogram

	// Snapshot cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss,expired,malformed,error}
	CacheWrites  *prometheus.CounterVec // labels: outcome={success,error}

	PublishedMessages prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all tracker metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Load cycles by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete list, backfill and merge cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		EventsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_loaded",
			Help:      "Number of events in the most recently published snapshot.",
		}),
		EventsMissingGeometry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_missing_geometry",
			Help:      "Events in the latest snapshot that still have no observations.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful load.",
		}),
		ListAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_attempts_total",
			Help:      "Event list fetch attempts by outcome.",
		}, []string{"outcome"}),
		DetailFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_fetches_total",
			Help:      "Per-event geometry backfill requests by outcome.",
		}, []string{"outcome"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eonet_requests_total",
			Help:      "EONET API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eonet_request_duration_seconds",
			Help:      "EONET API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		RetryWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retry_wait_seconds",
			Help:      "Backoff waits between list attempts.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 60},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache reads by result.",
		}, []string{"result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Snapshot cache writes by outcome.",
		}, []string{"outcome"}),
		PublishedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_messages_total",
			Help:      "Event messages written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Snapshots that failed to publish.",
		}),
	}

	prometheus.MustRegister(
		m.LoadsTotal,
		m.LoadDuration,
		m.EventsLoaded,
		m.EventsMissingGeometry,
		m.LastSuccess,
		m.ListAttempts,
		m.DetailFetches,
		m.APIRequests,
		m.APIDuration,
		m.RetryWait,
		m.CacheLookups,
		m.CacheWrites,
		m.PublishedMessages,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LoadsTotal:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "loads_total"}, []string{"trigger", "outcome"}),
		LoadDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "load_duration_seconds"}),
		EventsLoaded:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "events_loaded"}),
		EventsMissingGeometry: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "events_missing_geometry"}),
		LastSuccess:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "last_success_timestamp_seconds"}),
		ListAttempts:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "list_attempts_total"}, []string{"outcome"}),
		DetailFetches:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "detail_fetches_total"}, []string{"outcome"}),
		APIRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "eonet_requests_total"}, []string{"endpoint", "outcome"}),
		APIDuration:           prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "eonet_request_duration_seconds"}, []string{"endpoint"}),
		RetryWait:             prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "retry_wait_seconds"}),
		CacheLookups:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total"}, []string{"result"}),
		CacheWrites:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_writes_total"}, []string{"outcome"}),
		PublishedMessages:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "published_messages_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
	}
}
