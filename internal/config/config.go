package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	StorageDriver      string
	DatabaseURL        string
	RedisURL           string
	LogFormat          string
	LogLevel           string
	CORSAllowedOrigins []string
	MetricsNamespace   string
	OTLPEndpoint       string
	OTelServiceName    string
	OTelSamplerRatio   float64
	MigrationsAuto     bool
	BodyLimitBytes     int64

	IdempotencyLockTTL time.Duration
	CartParkTTL        time.Duration
	RateLimitCheckout  string
	CatalogCacheTTL    time.Duration

	FiscalEnabled       bool
	FiscalProviderURL   string
	FiscalTimeout       time.Duration
	FiscalMaxRetry      int
	FiscalAllowDisabled bool

	FiscalBreakerMinCalls int
	FiscalBreakerRatio    float64
	FiscalBreakerCooldown time.Duration

	WorkerConcurrency   int
	ParkedSweepInterval time.Duration
	WorkerMetricsAddr   string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		StorageDriver:      strings.ToLower(valueOrDefault(k.String("STORAGE_DRIVER"), StoragePostgres)),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), "info"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "pos"),
		OTLPEndpoint:       strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTelServiceName:    valueOrDefault(k.String("OTEL_SERVICE_NAME"), "backend-pos"),
		OTelSamplerRatio:   parseFloat(k.String("OTEL_SAMPLER_RATIO"), 1),
		MigrationsAuto:     parseBool(k.String("MIGRATIONS_AUTO"), false),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),

		IdempotencyLockTTL: parseDuration(k.String("IDEMPOTENCY_LOCK_TTL"), "30s"),
		CartParkTTL:        parseDuration(k.String("CART_PARK_TTL"), "30m"),
		RateLimitCheckout:  valueOrDefault(k.String("RATE_LIMIT_CHECKOUT"), "60-M"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		FiscalEnabled:       parseBool(k.String("FISCAL_ENABLED"), false),
		FiscalProviderURL:   strings.TrimSpace(k.String("FISCAL_PROVIDER_URL")),
		FiscalTimeout:       parseDuration(k.String("FISCAL_TIMEOUT"), "5s"),
		FiscalMaxRetry:      parseInt(k.String("FISCAL_MAX_RETRY"), 3),
		FiscalAllowDisabled: parseBool(k.String("FISCAL_ALLOW_DISABLED"), true),

		FiscalBreakerMinCalls: parseInt(k.String("FISCAL_BREAKER_MIN_CALLS"), 5),
		FiscalBreakerRatio:    parseFloat(k.String("FISCAL_BREAKER_FAILURE_RATIO"), 0.5),
		FiscalBreakerCooldown: parseDuration(k.String("FISCAL_BREAKER_COOLDOWN"), "30s"),

		WorkerConcurrency:   parseInt(k.String("WORKER_CONCURRENCY"), 4),
		ParkedSweepInterval: parseDuration(k.String("PARKED_SWEEP_INTERVAL"), "1m"),
		WorkerMetricsAddr:   valueOrDefault(k.String("WORKER_METRICS_ADDR"), ":9091"),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q is not supported", cfg.StorageDriver)
	}
	if cfg.OTelSamplerRatio < 0 || cfg.OTelSamplerRatio > 1 {
		return nil, errors.New("OTEL_SAMPLER_RATIO must be between 0 and 1")
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
