package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout outcomes.
	CheckoutTotal *prometheus.CounterVec
	// CheckoutDuration records checkout latency in milliseconds.
	CheckoutDuration *prometheus.HistogramVec
	// IdempotentReplayTotal counts responses served from the idempotency store.
	IdempotentReplayTotal *prometheus.CounterVec
	// PromotionEvaluationsTotal counts promotion evaluations by outcome.
	PromotionEvaluationsTotal *prometheus.CounterVec
	// LotAllocationsTotal counts lot allocator runs by direction and result.
	LotAllocationsTotal *prometheus.CounterVec
	// CartMutationsTotal counts cart mutations by operation.
	CartMutationsTotal *prometheus.CounterVec
	// FiscalDocumentsTotal counts fiscal documents by type and final status.
	FiscalDocumentsTotal *prometheus.CounterVec
	// ParkedCartsExpired counts parked carts moved to EXPIRED by the sweeper.
	ParkedCartsExpired prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout outcomes.",
		}, []string{"result"})
		CheckoutDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_ms",
			Help:      "Checkout latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"result"})
		IdempotentReplayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replay_total",
			Help:      "Count of responses replayed from the idempotency store.",
		}, []string{"endpoint"})
		PromotionEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_evaluations_total",
			Help:      "Count of promotion evaluations by outcome.",
		}, []string{"outcome"})
		LotAllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lot_allocations_total",
			Help:      "Count of inventory lot allocations by direction and result.",
		}, []string{"direction", "result"})
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"operation"})
		FiscalDocumentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fiscal_documents_total",
			Help:      "Count of fiscal documents by type and status.",
		}, []string{"document_type", "status"})
		ParkedCartsExpired = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parked_carts_expired_total",
			Help:      "Number of parked carts expired by the sweeper.",
		})

		CheckoutTotal = register(reg, CheckoutTotal)
		CheckoutDuration = register(reg, CheckoutDuration)
		IdempotentReplayTotal = register(reg, IdempotentReplayTotal)
		PromotionEvaluationsTotal = register(reg, PromotionEvaluationsTotal)
		LotAllocationsTotal = register(reg, LotAllocationsTotal)
		CartMutationsTotal = register(reg, CartMutationsTotal)
		FiscalDocumentsTotal = register(reg, FiscalDocumentsTotal)
		ParkedCartsExpired = register(reg, ParkedCartsExpired)
	})
}

// ObserveCheckout records a checkout outcome and its latency.
func ObserveCheckout(result string, started time.Time) {
	if CheckoutTotal != nil {
		CheckoutTotal.WithLabelValues(result).Inc()
	}
	if CheckoutDuration != nil {
		CheckoutDuration.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
	}
}

// IncReplay counts an idempotent replay for endpoint.
func IncReplay(endpoint string) {
	if IdempotentReplayTotal != nil {
		IdempotentReplayTotal.WithLabelValues(endpoint).Inc()
	}
}

// IncPromotionEvaluation counts a promotion evaluation outcome.
func IncPromotionEvaluation(outcome string) {
	if PromotionEvaluationsTotal != nil {
		PromotionEvaluationsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncLotAllocation counts a lot allocator run.
func IncLotAllocation(direction, result string) {
	if LotAllocationsTotal != nil {
		LotAllocationsTotal.WithLabelValues(direction, result).Inc()
	}
}

// IncCartMutation counts a cart mutation.
func IncCartMutation(operation string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(operation).Inc()
	}
}

// IncFiscalDocument counts a recorded fiscal document.
func IncFiscalDocument(documentType, status string) {
	if FiscalDocumentsTotal != nil {
		FiscalDocumentsTotal.WithLabelValues(documentType, status).Inc()
	}
}

// AddExpiredCarts counts parked carts expired by the sweeper.
func AddExpiredCarts(n int64) {
	if ParkedCartsExpired != nil && n > 0 {
		ParkedCartsExpired.Add(float64(n))
	}
}
