package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/fiscal"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/payment"
	"github.com/noah-isme/backend-pos/internal/promotion"
	"github.com/noah-isme/backend-pos/internal/ratelimit"
	"github.com/noah-isme/backend-pos/internal/receipt"
	"github.com/noah-isme/backend-pos/internal/returns"
	"github.com/noah-isme/backend-pos/internal/security"
)

// Cart mutation burst limit per cashier.
const (
	cartBurstWindow = 10 * time.Second
	cartBurstMax    = 50
)

// RouterOptions tunes the HTTP surface.
type RouterOptions struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	Tracing  bool
}

// Router builds the chi router serving /api/v1, health probes and /metrics.
func (a *App) Router(opts RouterOptions) (http.Handler, error) {
	cfg := a.Config
	metrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, opts.Registry)

	checkoutLimiter, err := ratelimit.NewCheckoutLimiter(a.Redis, cfg.RateLimitCheckout)
	if err != nil {
		return nil, err
	}
	cartLimit := ratelimit.Handler{
		Config:  ratelimit.Config{Key: ratelimit.CashierKey, Window: cartBurstWindow, Max: cartBurstMax},
		OnError: func(err error) { a.Logger.Warn().Err(err).Msg("cart rate limiter unavailable") },
	}
	if a.Redis != nil {
		cartLimit.Limiter = ratelimit.CartBurst{Client: a.Redis, Prefix: "pos:cart-burst:", Now: a.now}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.TillMiddleware)
	if opts.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: a.Logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production", NoStore: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", common.IdempotencyHeader, common.TerminalHeader, common.CashierHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", checkout.ReplayHeader, "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	probes := map[string]health.Probe{}
	if a.Pool != nil {
		probes["db"] = health.Postgres(a.Pool)
	} else {
		probes["storage"] = func(_ context.Context) error { return nil }
	}
	if a.Redis != nil {
		probes["redis"] = health.Redis(a.Redis)
	}
	healthHandler := health.Handler{Probes: probes}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	carts := &cart.Handler{Svc: a.Cart}
	sales := &checkout.Handler{Svc: a.Checkout}
	refunds := &returns.Handler{Svc: a.Returns}
	promos := &promotion.Handler{Svc: a.Promotion}
	stock := &inventory.Handler{Svc: a.Inventory}
	payments := &payment.Handler{Svc: a.Payment}
	receipts := &receipt.Handler{Svc: a.Receipt}
	documents := &fiscal.Handler{Svc: a.Fiscal}
	prices := &catalog.Handler{Svc: a.Catalog}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", carts.Get)
			c.Group(func(g chi.Router) {
				g.Use(cartLimit.Middleware)
				g.Post("/", carts.Create)
				g.Post("/{id}/lines", carts.AddLine)
				g.Put("/{id}/lines/{lineId}", carts.UpdateLine)
				g.Delete("/{id}/lines/{lineId}", carts.RemoveLine)
				g.Post("/{id}/recalculate", carts.Recalculate)
				g.Post("/{id}/park", carts.Park)
				g.Post("/{id}/resume", carts.Resume)
				g.Post("/{id}/cancel", carts.Cancel)
			})
		})

		v.With(ratelimit.TerminalMiddleware(checkoutLimiter)).Post("/sales/checkout", sales.Checkout)
		v.Post("/sales/{id}/returns", refunds.Create)

		v.Post("/promotions/evaluate", promos.Evaluate)

		v.Route("/inventory", func(i chi.Router) {
			i.Get("/stores/{storeId}/products/{productId}/lots", stock.Lots)
			i.Get("/stores/{storeId}/on-hand", stock.OnHand)
			i.Post("/lots/receive", stock.Receive)
		})

		v.Get("/payments/{id}", payments.Get)
		v.Post("/payments/{id}/transitions", payments.Transition)

		v.Get("/receipts/{receiptNumber}", receipts.Get)

		v.Get("/fiscal/documents/{id}", documents.Get)
		v.Post("/fiscal/documents/{id}/cancel", documents.Cancel)

		v.Get("/catalog/stores/{storeId}/products/{productId}/price", prices.Price)
	})
	return r, nil
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
