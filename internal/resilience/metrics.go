package resilience

import "github.com/prometheus/client_golang/prometheus"

var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pos",
			Name:      "collaborator_breaker_state",
			Help:      "Breaker position per external collaborator: 0 closed, 1 open, 2 half-open.",
		},
		[]string{"collaborator"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "collaborator_breaker_transitions_total",
			Help:      "Breaker state changes per external collaborator.",
		},
		[]string{"collaborator", "from", "to"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions)
}
