package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// brief extraction pipeline and the HTTP API.
type Metrics struct {
	BriefsProcessed  prometheus.Counter
	DraftsCreated    prometheus.Counter
	DraftsDeduped    prometheus.Counter
	DraftsConfirmed  prometheus.Counter
	DraftsRejected   prometheus.Counter
	IncidentsCreated prometheus.Counter

	// Extraction and geocoding metrics.
	PlacesExtracted  prometheus.Counter
	GeocodeResolves  *prometheus.CounterVec // labels: outcome={resolved,none}
	GeocodeDuration  prometheus.Histogram
	PipelineDuration prometheus.Histogram

	// Spatial query metrics.
	RiskQueries    prometheus.Counter
	RiskQueryScore prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		BriefsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "briefs_processed_total",
			Help:      "Total briefs run through the extraction pipeline.",
		}),
		DraftsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "drafts_created_total",
			Help:      "Total draft incidents produced by the pipeline.",
		}),
		DraftsDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "drafts_deduped_total",
			Help:      "Draft candidates discarded as repeated mentions.",
		}),
		DraftsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "drafts_confirmed_total",
			Help:      "Drafts confirmed into incidents by an operator.",
		}),
		DraftsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "drafts_rejected_total",
			Help:      "Drafts rejected by an operator.",
		}),
		IncidentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "incidents_created_total",
			Help:      "Incidents created, manual and confirmed combined.",
		}),
		PlacesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "places_extracted_total",
			Help:      "Place-name candidates found in brief text.",
		}),
		GeocodeResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "geocode_resolves_total",
			Help:      "Place-name resolutions by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corridor",
			Name:      "geocode_batch_duration_seconds",
			Help:      "Duration of a full place-name resolution batch.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corridor",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete brief-to-drafts run.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RiskQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corridor",
			Name:      "risk_queries_total",
			Help:      "Corridor risk assessments computed.",
		}),
		RiskQueryScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corridor",
			Name:      "risk_query_score",
			Help:      "Distribution of computed corridor risk scores.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1},
		}),
	}

	prometheus.MustRegister(
		m.BriefsProcessed,
		m.DraftsCreated,
		m.DraftsDeduped,
		m.DraftsConfirmed,
		m.DraftsRejected,
		m.IncidentsCreated,
		m.PlacesExtracted,
		m.GeocodeResolves,
		m.GeocodeDuration,
		m.PipelineDuration,
		m.RiskQueries,
		m.RiskQueryScore,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		BriefsProcessed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "briefs_processed_total"}),
		DraftsCreated:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "drafts_created_total"}),
		DraftsDeduped:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "drafts_deduped_total"}),
		DraftsConfirmed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "drafts_confirmed_total"}),
		DraftsRejected:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "drafts_rejected_total"}),
		IncidentsCreated: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "incidents_created_total"}),
		PlacesExtracted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "places_extracted_total"}),
		GeocodeResolves:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "corridor", Name: "geocode_resolves_total"}, []string{"outcome"}),
		GeocodeDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "corridor", Name: "geocode_batch_duration_seconds"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "corridor", Name: "pipeline_duration_seconds"}),
		RiskQueries:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "corridor", Name: "risk_queries_total"}),
		RiskQueryScore:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "corridor", Name: "risk_query_score"}),
	}
}
