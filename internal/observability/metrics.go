package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// incident aggregation pipeline.
type Metrics struct {
	// Source client metrics.
	SourceRequests *prometheus.CounterVec // labels: outcome={ok,no_data,http_error,malformed,error}
	SourceDuration prometheus.Histogram

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Aggregation metrics.
	WindowDuration prometheus.Histogram
	RecordsMerged  prometheus.Histogram

	// Place resolver metrics.
	ResolverLookups *prometheus.CounterVec // labels: outcome={ok,fallback}

	// Archive publisher metrics.
	ArchivePublished prometheus.Counter
	ArchiveErrors    prometheus.Counter

	ServiceReady prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_feed",
			Name:      "source_requests_total",
			Help:      "Incident source requests by outcome.",
		}, []string{"outcome"}),
		SourceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_feed",
			Name:      "source_request_duration_seconds",
			Help:      "Incident source request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_feed",
			Name:      "cache_lookups_total",
			Help:      "Session cache lookups by result.",
		}, []string{"result"}),
		WindowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_feed",
			Name:      "window_duration_seconds",
			Help:      "Duration of a complete tiles-by-months aggregation window.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RecordsMerged: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_feed",
			Name:      "records_merged",
			Help:      "Number of records in a merged aggregation result.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		ResolverLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_feed",
			Name:      "resolver_lookups_total",
			Help:      "Place resolver lookups by outcome.",
		}, []string{"outcome"}),
		ArchivePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_feed",
			Name:      "archive_published_total",
			Help:      "Total records published to the archive topic.",
		}),
		ArchiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_feed",
			Name:      "archive_errors_total",
			Help:      "Total archive publish failures.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_feed",
			Name:      "service_ready",
			Help:      "1 once the pipeline has served at least one window.",
		}),
	}

	prometheus.MustRegister(
		m.SourceRequests,
		m.SourceDuration,
		m.CacheLookups,
		m.WindowDuration,
		m.RecordsMerged,
		m.ResolverLookups,
		m.ArchivePublished,
		m.ArchiveErrors,
		m.ServiceReady,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SourceRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_feed", Name: "source_requests_total"}, []string{"outcome"}),
		SourceDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_feed", Name: "source_request_duration_seconds"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_feed", Name: "cache_lookups_total"}, []string{"result"}),
		WindowDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_feed", Name: "window_duration_seconds"}),
		RecordsMerged:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_feed", Name: "records_merged"}),
		ResolverLookups:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_feed", Name: "resolver_lookups_total"}, []string{"outcome"}),
		ArchivePublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_feed", Name: "archive_published_total"}),
		ArchiveErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_feed", Name: "archive_errors_total"}),
		ServiceReady:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_feed", Name: "service_ready"}),
	}
}
