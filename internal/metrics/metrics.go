package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation outcomes
const (
	OutcomeOK            = "ok"
	OutcomeBadResponse   = "bad_response"
	OutcomeProviderError = "provider_error"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_generation_duration_seconds",
			Help:    "Duration of the model generation call in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	BuildsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_builds_saved_total",
			Help: "Recommendations stored in build history",
		},
	)
)

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
