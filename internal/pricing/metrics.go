package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pricingResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chauffio_pricing_results_total",
		Help: "Pricing computations by mode and fallback reason.",
	}, []string{"mode", "fallback_reason"})

	pricingOverridesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chauffio_pricing_overrides_total",
		Help: "Manual price overrides by outcome.",
	}, []string{"outcome"})

	pricingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chauffio_pricing_duration_seconds",
		Help:    "Wall time of a full pricing computation.",
		Buckets: prometheus.DefBuckets,
	})
)

func observeResult(result *Result) {
	pricingResultsTotal.WithLabelValues(string(result.Mode), string(result.FallbackReason)).Inc()
}
