// Package queue carries post-commit work to the worker process over asynq.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/resilience"
)

// DefaultQueue is the asynq queue every task lands on unless overridden.
const DefaultQueue = "default"

// Task represents a job to be processed asynchronously.
type Task struct {
	Kind           string
	Payload        []byte
	IdempotencyKey string
	MaxAttempts    int
	Delay          time.Duration
}

// Client is the part of *asynq.Client the enqueuer needs.
type Client interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer publishes tasks to asynq.
type Enqueuer struct {
	Client   Client
	Queue    string
	DedupTTL time.Duration
}

// Enqueue submits the task. A task carrying an idempotency key is only accepted
// once while asynq retains it; a repeat submission is silently dropped.
func (e Enqueuer) Enqueue(ctx context.Context, t Task) error {
	if e.Client == nil {
		return errors.New("queue: task client not configured")
	}
	kind := sanitizeKind(t.Kind)
	if kind == "" {
		return errors.New("queue: task kind is required")
	}
	_, err := e.Client.EnqueueContext(ctx, asynq.NewTask(kind, t.Payload), e.options(t)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", kind, err)
	}
	return nil
}

func (e Enqueuer) options(t Task) []asynq.Option {
	attempts := t.MaxAttempts
	if attempts <= 0 {
		attempts = 10
	}
	queue := e.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(attempts - 1)}
	if t.Delay > 0 {
		opts = append(opts, asynq.ProcessIn(t.Delay))
	}
	if t.IdempotencyKey != "" {
		ttl := e.DedupTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		opts = append(opts, asynq.TaskID(t.Kind+":"+t.IdempotencyKey), asynq.Retention(ttl))
	}
	return opts
}

func sanitizeKind(kind string) string {
	for i := 0; i < len(kind); i++ {
		c := kind[i]
		if c >= 'a' && c <= 'z' {
			continue
		}
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '-' || c == '_' || c == ':' {
			continue
		}
		return ""
	}
	return kind
}

// ServerConfig tunes the worker side.
type ServerConfig struct {
	Concurrency int
	Queue       string
	RetryBase   time.Duration
	RetryJitter float64
}

// NewServer builds an asynq server whose retries back off exponentially.
func NewServer(opt asynq.RedisConnOpt, cfg ServerConfig, logger zerolog.Logger) *asynq.Server {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	base := cfg.RetryBase
	if base <= 0 {
		base = time.Second
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return resilience.Backoff(base, n+1, cfg.RetryJitter)
		},
		Logger:   zerologAdapter{l: logger},
		LogLevel: asynq.InfoLevel,
	})
}

// Mux routes task kinds to handlers and counts outcomes.
type Mux struct {
	*asynq.ServeMux
	Logger zerolog.Logger
}

// NewMux returns a Mux with outcome accounting installed.
func NewMux(logger zerolog.Logger) *Mux {
	m := &Mux{ServeMux: asynq.NewServeMux(), Logger: logger}
	m.Use(m.observe)
	return m
}

// Handle registers fn for kind.
func (m *Mux) Handle(kind string, fn func(context.Context, Task) error) {
	m.HandleFunc(kind, func(ctx context.Context, t *asynq.Task) error {
		return fn(ctx, Task{Kind: t.Type(), Payload: t.Payload()})
	})
}

func (m *Mux) observe(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)
		status := "ok"
		if err != nil {
			status = "error"
			retried, _ := asynq.GetRetryCount(ctx)
			m.Logger.Warn().Err(err).Str("kind", t.Type()).Int("retry", retried).Msg("task failed")
		}
		QueueProcessedTotal.WithLabelValues(t.Type(), status).Inc()
		return err
	})
}

type zerologAdapter struct{ l zerolog.Logger }

func (a zerologAdapter) Debug(args ...any) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Info(args ...any)  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Warn(args ...any)  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Error(args ...any) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Fatal(args ...any) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
