// Package idempotency scopes mutating requests to at-most-once execution per client token.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/lock"
)

// Record statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

const defaultLockTTL = 30 * time.Second

// ErrFingerprintMismatch marks a token reused with a different request body.
var ErrFingerprintMismatch = errors.New("idempotency key reused with a different payload")

// Queries is the storage surface of the idempotency record.
type Queries interface {
	InsertIdempotencyKey(ctx context.Context, arg dbgen.InsertIdempotencyKeyParams) (int64, error)
	GetIdempotencyKeyForUpdate(ctx context.Context, arg dbgen.GetIdempotencyKeyForUpdateParams) (dbgen.IdempotencyKey, error)
	CompleteIdempotencyKey(ctx context.Context, arg dbgen.CompleteIdempotencyKeyParams) error
}

// Locker serializes work on a key across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Request identifies one idempotent call.
type Request struct {
	Endpoint    string
	Token       string
	Fingerprint string
}

// Claim reserves the token inside the caller's transaction. It returns the stored
// response when the request was already completed, or nil when the caller owns
// the execution and must call Complete before committing.
func Claim(ctx context.Context, q Queries, req Request) ([]byte, error) {
	inserted, err := q.InsertIdempotencyKey(ctx, dbgen.InsertIdempotencyKeyParams{
		EndpointKey:    req.Endpoint,
		IdempotencyKey: req.Token,
		RequestHash:    req.Fingerprint,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, common.Conflict("request with this Idempotency-Key is already being processed")
		}
		return nil, common.Internal("unable to reserve idempotency key", err)
	}
	if inserted == 1 {
		return nil, nil
	}
	rec, err := q.GetIdempotencyKeyForUpdate(ctx, dbgen.GetIdempotencyKeyForUpdateParams{
		EndpointKey:    req.Endpoint,
		IdempotencyKey: req.Token,
	})
	if err != nil {
		if db.IsLockConflict(err) {
			return nil, common.Conflict("request with this Idempotency-Key is already being processed")
		}
		return nil, common.Internal("unable to load idempotency key", err)
	}
	if rec.RequestHash != req.Fingerprint {
		return nil, common.NewAppError(common.CodeConflict, "Idempotency-Key was already used with a different request", http.StatusConflict, ErrFingerprintMismatch)
	}
	if rec.Status != StatusCompleted {
		return nil, common.Conflict("request with this Idempotency-Key is already being processed")
	}
	return rec.ResponsePayload, nil
}

// Complete encodes the response and stores it against the token. The returned
// bytes are what every replay will receive.
func Complete(ctx context.Context, q Queries, req Request, response any) ([]byte, error) {
	body, err := json.Marshal(response)
	if err != nil {
		return nil, common.Internal("unable to encode response", err)
	}
	if err := q.CompleteIdempotencyKey(ctx, dbgen.CompleteIdempotencyKeyParams{
		EndpointKey:     req.Endpoint,
		IdempotencyKey:  req.Token,
		ResponsePayload: body,
	}); err != nil {
		return nil, common.Internal("unable to store idempotent response", err)
	}
	return body, nil
}

// LockKey is the in-flight lock key for a token on an endpoint.
func LockKey(endpoint, token string) string {
	return "idem:" + endpoint + ":" + common.Sha256Hex(token)
}

// Guard makes concurrent requests carrying the same token wait for each other.
type Guard struct {
	Locker  Locker
	LockTTL time.Duration
}

// Do runs fn under the token lock. Without a locker fn runs directly and the
// database record alone arbitrates.
func (g *Guard) Do(ctx context.Context, endpoint, token string, fn func(context.Context) error) error {
	if g == nil || g.Locker == nil {
		return fn(ctx)
	}
	ttl := g.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	var inner error
	err := g.Locker.WithLock(ctx, LockKey(endpoint, token), ttl, func(ctx context.Context) error {
		inner = fn(ctx)
		return inner
	})
	if inner != nil {
		return inner
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, lock.ErrNotAcquired) {
			return common.Conflict("request with this Idempotency-Key is already being processed")
		}
		return common.Internal("unable to acquire idempotency lock", err)
	}
	return nil
}
