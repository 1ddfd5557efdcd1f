// Package app assembles the engine's services from configuration. Both the
// API and the worker binaries build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/fiscal"
	"github.com/noah-isme/backend-pos/internal/idempotency"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/payment"
	"github.com/noah-isme/backend-pos/internal/promotion"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/receipt"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/returns"
)

// App holds the shared infrastructure and every domain service.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	DB    db.TxRunner
	Pool  *pgxpool.Pool
	Redis *redis.Client
	Tasks *asynq.Client
	Bus   *events.Bus
	Guard *idempotency.Guard
	// Demo is set when the in-memory store was seeded at startup.
	Demo *memdb.Retail

	Catalog   *catalog.Service
	Cart      *cart.Service
	Checkout  *checkout.Service
	Payment   *payment.Service
	Promotion *promotion.Service
	Inventory *inventory.Service
	Receipt   *receipt.Service
	Returns   *returns.Service
	Fiscal    *fiscal.Service
	Dispatch  *fiscal.Dispatcher

	now     func() time.Time
	closers []func() error
}

// Options overrides pieces of the assembly, mostly for tests.
type Options struct {
	// Now replaces the wall clock in every service.
	Now func() time.Time
	// SkipDemo leaves the in-memory store empty.
	SkipDemo bool
}

// New connects to storage and wires services according to cfg.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	a := &App{Config: cfg, Logger: logger}
	if err := a.openStorage(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openRedis(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.wire(opts.Now)
	return a, nil
}

func (a *App) openStorage(ctx context.Context, opts Options) error {
	switch a.Config.StorageDriver {
	case config.StorageMemory:
		store := memdb.New()
		if !opts.SkipDemo {
			demo := seedDemo(store)
			a.Demo = &demo
			a.Logger.Info().
				Str("store_id", db.UUIDString(demo.Store.ID)).
				Str("terminal_id", db.UUIDString(demo.Terminal.ID)).
				Msg("in-memory store seeded with demo data")
		}
		a.DB = store
		return nil
	case config.StoragePostgres:
		poolConfig, err := pgxpool.ParseConfig(a.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("app: parse database url: %w", err)
		}
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = a.Config.OTelServiceName

		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			return fmt.Errorf("app: connect database: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := pool.Ping(connectCtx); err != nil {
			return fmt.Errorf("app: ping database: %w", err)
		}
		a.Pool = pool
		a.DB = db.NewPoolStore(pool)
		return nil
	default:
		return fmt.Errorf("app: unknown storage driver %q", a.Config.StorageDriver)
	}
}

func (a *App) openRedis(ctx context.Context) error {
	if a.Config.RedisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("app: parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	a.closers = append(a.closers, client.Close)
	if err := redisotel.InstrumentTracing(client); err != nil {
		a.Logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		a.Logger.Error().Err(err).Msg("instrument redis metrics")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("app: ping redis: %w", err)
	}
	a.Redis = client

	tasks := asynq.NewClientFromRedisClient(client)
	a.closers = append(a.closers, tasks.Close)
	a.Tasks = tasks
	return nil
}

func (a *App) wire(now func() time.Time) {
	cfg := a.Config
	logger := a.Logger
	a.now = now

	a.Bus = &events.Bus{Logger: logger.With().Str("component", "events").Logger()}
	a.Guard = &idempotency.Guard{LockTTL: cfg.IdempotencyLockTTL}
	if a.Redis != nil {
		a.Guard.Locker = lock.Locker{R: a.Redis, Prefix: "pos:", MaxWait: cfg.IdempotencyLockTTL}
	}
	cache := catalog.NewCache(a.Redis, cfg.CatalogCacheTTL)

	a.Catalog = &catalog.Service{DB: a.DB, Cache: cache, Now: now, Logger: logger}
	a.Promotion = &promotion.Service{DB: a.DB, Cache: cache, Now: now, Logger: logger}
	a.Inventory = &inventory.Service{DB: a.DB, Now: now, Logger: logger}
	a.Receipt = &receipt.Service{DB: a.DB}
	a.Payment = &payment.Service{DB: a.DB, Bus: a.Bus, Logger: logger}
	a.Cart = &cart.Service{DB: a.DB, Bus: a.Bus, ParkTTL: cfg.CartParkTTL, Now: now, Logger: logger}

	a.Fiscal = &fiscal.Service{
		DB:       a.DB,
		Provider: a.fiscalProvider(),
		Enabled:  cfg.FiscalEnabled,
		Now:      now,
		Logger:   logger.With().Str("component", "fiscal").Logger(),
	}
	a.Dispatch = &fiscal.Dispatcher{Svc: a.Fiscal, MaxAttempts: cfg.FiscalMaxRetry + 1, Logger: logger}
	if a.Tasks != nil {
		a.Dispatch.Queue = queue.Enqueuer{Client: a.Tasks, Queue: queue.DefaultQueue, DedupTTL: 24 * time.Hour}
	}

	a.Checkout = &checkout.Service{
		DB:            a.DB,
		Guard:         a.Guard,
		Bus:           a.Bus,
		Fiscal:        a.Dispatch,
		FiscalEnabled: cfg.FiscalEnabled,
		RequireFiscal: !cfg.FiscalAllowDisabled,
		Now:           now,
		Logger:        logger,
	}
	a.Returns = &returns.Service{DB: a.DB, Guard: a.Guard, Bus: a.Bus, Fiscal: a.Dispatch, Now: now, Logger: logger}

	a.Bus.Subscribe(events.TopicSaleCheckedOut, &receipt.Printer{
		Svc:    a.Receipt,
		Logger: logger.With().Str("component", "printer").Logger(),
	})
}

func (a *App) fiscalProvider() fiscal.Provider {
	cfg := a.Config
	if !cfg.FiscalEnabled {
		return nil
	}
	if cfg.FiscalProviderURL == "" {
		return fiscal.StubProvider{}
	}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Collaborator: "fiscal-provider",
		MinCalls:     cfg.FiscalBreakerMinCalls,
		FailureRatio: cfg.FiscalBreakerRatio,
		Cooldown:     cfg.FiscalBreakerCooldown,
	}, a.Logger)
	return &fiscal.HTTPProvider{
		BaseURL: cfg.FiscalProviderURL,
		Client:  resilience.NewHTTPClient("fiscal-provider", cfg.FiscalTimeout, cfg.FiscalMaxRetry, breaker),
	}
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error().Err(err).Msg("close dependency")
		}
	}
	a.closers = nil
}

func seedDemo(store *memdb.Store) memdb.Retail {
	demo := memdb.SeedRetail(store, memdb.RetailOptions{CashRounding: "NEAREST", CashStep: "0.05"})
	store.Seed(func(seed *memdb.Seeder) {
		expiry := pgtype.Date{Time: time.Now().UTC().AddDate(1, 0, 0), Valid: true}
		for _, p := range []dbgen.Product{demo.ProductA, demo.ProductB, demo.OpenItem} {
			seed.Lot(dbgen.InventoryLot{StoreID: demo.Store.ID, ProductID: p.ID, LotCode: "DEMO-1", ExpiryDate: expiry}, decimal.NewFromInt(100))
		}
	})
	return demo
}
