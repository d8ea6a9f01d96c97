package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omnisearch_search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25},
		},
		[]string{"status"},
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnisearch_search_total",
			Help: "Total searches processed",
		},
		[]string{"status"},
	)

	AdapterOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnisearch_adapter_outcomes_total",
			Help: "Adapter call outcomes by integration and status",
		},
		[]string{"integration", "status"},
	)

	AdapterDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omnisearch_adapter_duration_seconds",
			Help:    "Per-adapter call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"integration"},
	)

	RankingFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omnisearch_ranking_fallbacks_total",
			Help: "Searches ranked by the heuristic fallback",
		},
	)

	ResultsPerSearch = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omnisearch_results_per_search",
			Help:    "Canonical results per search after dedup",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnisearch_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnisearch_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ActiveSearches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "omnisearch_active_searches",
			Help: "Searches currently in flight",
		},
	)
)

func Init() {
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchTotal)
	prometheus.MustRegister(AdapterOutcomes)
	prometheus.MustRegister(AdapterDuration)
	prometheus.MustRegister(RankingFallbacks)
	prometheus.MustRegister(ResultsPerSearch)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ActiveSearches)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
