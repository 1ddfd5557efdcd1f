package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/resilience"
)

func TestFiscalBreakerMetrics(t *testing.T) {
	resilience.BreakerState.Reset()
	resilience.BreakerTransitions.Reset()

	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Collaborator: "fiscal-provider",
		MinCalls:     1,
		FailureRatio: 0.5,
		Cooldown:     30 * time.Second,
		Now:          func() time.Time { return clock },
	}, zerolog.Nop())
	ctx := context.Background()
	state := func() float64 {
		return testutil.ToFloat64(resilience.BreakerState.WithLabelValues("fiscal-provider"))
	}
	moved := func(from, to string) float64 {
		return testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("fiscal-provider", from, to))
	}

	require.Equal(t, 0.0, state())
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, 1.0, state())

	clock = clock.Add(30 * time.Second)
	require.True(t, breaker.Allow(ctx))
	require.Equal(t, 2.0, state())

	breaker.Report(ctx, true)
	require.Equal(t, 0.0, state())

	require.Equal(t, 1.0, moved("closed", "open"))
	require.Equal(t, 1.0, moved("open", "half_open"))
	require.Equal(t, 1.0, moved("half_open", "closed"))
}
