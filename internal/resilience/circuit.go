// Package resilience guards calls to external collaborators, such as the
// fiscal provider, with a circuit breaker and bounded retries.
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a breaker for one collaborator.
type BreakerConfig struct {
	// Collaborator labels metrics and logs, e.g. "fiscal-provider".
	Collaborator string
	// MinCalls is the number of outcomes observed before the ratio is judged.
	MinCalls int
	// FailureRatio opens the breaker once failures/calls reaches it.
	FailureRatio float64
	// Cooldown is how long the breaker stays open before a trial call.
	Cooldown time.Duration
	Now      func() time.Time
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MinCalls <= 0 {
		c.MinCalls = 1
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.5
	}
	if c.FailureRatio > 1 {
		c.FailureRatio = 1
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Collaborator = strings.TrimSpace(c.Collaborator)
	if c.Collaborator == "" {
		c.Collaborator = "default"
	}
	return c
}

// Breaker counts call outcomes in a window of at least MinCalls and opens
// when the failure ratio is reached. While half-open exactly one trial call
// is let through; its outcome closes or re-opens the breaker.
type Breaker struct {
	cfg    BreakerConfig
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	failures int
	calls    int
	openedAt time.Time
	trialOut bool
}

// NewBreaker returns a closed breaker and publishes its state gauge.
func NewBreaker(cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	b := &Breaker{cfg: cfg.withDefaults(), logger: logger, state: Closed}
	BreakerState.WithLabelValues(b.cfg.Collaborator).Set(stateGaugeValue(Closed))
	return b
}

// Collaborator returns the label the breaker reports under.
func (b *Breaker) Collaborator() string { return b.cfg.Collaborator }

// Allow reports whether a call may go out now.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.cfg.Now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.moveLocked(ctx, HalfOpen)
		b.trialOut = true
		return true
	case HalfOpen:
		if b.trialOut {
			return false
		}
		b.trialOut = true
		return true
	default:
		return true
	}
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Report records the outcome of an allowed call.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.trialOut = false
		if success {
			b.moveLocked(ctx, Closed)
		} else {
			b.moveLocked(ctx, Open)
		}
		return
	}

	b.calls++
	if !success {
		b.failures++
	}
	if b.calls < b.cfg.MinCalls {
		return
	}
	if float64(b.failures)/float64(b.calls) >= b.cfg.FailureRatio {
		b.moveLocked(ctx, Open)
		return
	}
	if b.calls >= b.cfg.MinCalls*2 {
		// halve the window so old outcomes fade
		b.calls = (b.calls + 1) / 2
		b.failures = (b.failures + 1) / 2
	}
}

func (b *Breaker) moveLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	b.calls, b.failures = 0, 0
	switch next {
	case Open:
		b.openedAt = b.cfg.Now()
	case Closed:
		b.openedAt = time.Time{}
	}

	label := b.cfg.Collaborator
	BreakerState.WithLabelValues(label).Set(stateGaugeValue(next))
	BreakerTransitions.WithLabelValues(label, prev.String(), next.String()).Inc()

	logger := b.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = *l
	}
	evt := logger.Info()
	if next == Open {
		evt = logger.Warn().Dur("cooldown", b.cfg.Cooldown)
	}
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	evt.Str("collaborator", label).
		Str("from_state", prev.String()).
		Str("to_state", next.String()).
		Msg("collaborator circuit changed state")
}

func stateGaugeValue(state State) float64 {
	switch state {
	case Closed:
		return 0
	case Open:
		return 1
	case HalfOpen:
		return 2
	default:
		return -1
	}
}

// Backoff returns base doubled per attempt, spread by ±jitter (0.2 == 20%).
func Backoff(base time.Duration, attempt int, jitter float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitter <= 0 {
		return d
	}
	spread := float64(d) * jitter
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
