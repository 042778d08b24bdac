package quotes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var quoteTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chauffio_quote_transitions_total",
		Help: "Successful quote status transitions by from and to status.",
	},
	[]string{"from", "to"},
)
