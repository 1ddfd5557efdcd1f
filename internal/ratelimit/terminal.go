package ratelimit

import (
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-pos/internal/common"
)

// NewCheckoutLimiter builds a fixed-window limiter from a formatted rate such
// as "60-M". A nil client keeps counters in process memory.
func NewCheckoutLimiter(rdb *redis.Client, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	var store limiter.Store
	if rdb == nil {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "checkout"})
	} else {
		store, err = limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "checkout"})
		if err != nil {
			return nil, err
		}
	}
	return limiter.New(store, rate), nil
}

// TerminalMiddleware limits requests per terminal.
func TerminalMiddleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	mw := stdlib.NewMiddleware(l,
		stdlib.WithKeyGetter(TerminalKey),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			common.JSONError(w, http.StatusTooManyRequests, CodeRateLimited, "checkout rate limit exceeded for terminal", nil)
		}),
	)
	return mw.Handler
}

// TerminalKey keys by the terminal header, falling back to the client address.
func TerminalKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(common.TerminalHeader)); id != "" {
		return "terminal:" + id
	}
	return "ip:" + clientIP(r)
}
