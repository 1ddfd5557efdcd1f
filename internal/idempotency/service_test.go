package idempotency_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/idempotency"
	"github.com/noah-isme/backend-pos/internal/lock"
)

var errBoom = errors.New("boom")

func TestClaimCompleteReplay(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	req := idempotency.Request{Endpoint: "sales.checkout", Token: "tok-1", Fingerprint: "abc"}

	var first []byte
	err := store.InTx(ctx, func(q dbgen.Querier) error {
		replay, err := idempotency.Claim(ctx, q, req)
		require.NoError(t, err)
		require.Nil(t, replay)
		first, err = idempotency.Complete(ctx, q, req, map[string]string{"saleId": "s-1", "amount": "10.00"})
		return err
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(q dbgen.Querier) error {
		replay, err := idempotency.Claim(ctx, q, req)
		require.NoError(t, err)
		require.Equal(t, first, replay)
		return nil
	})
	require.NoError(t, err)

	other := req
	other.Fingerprint = "different"
	err = store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := idempotency.Claim(ctx, q, other)
		return err
	})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	require.ErrorIs(t, err, idempotency.ErrFingerprintMismatch)
}

func TestReplayKeepsEncodedFieldOrder(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	req := idempotency.Request{Endpoint: "sales.checkout", Token: "tok-order", Fingerprint: "abc"}
	type settlement struct {
		SaleID        string `json:"saleId"`
		ReceiptNumber string `json:"receiptNumber"`
		CartID        string `json:"cartId"`
		Change        string `json:"changeAmount"`
	}
	body := settlement{SaleID: "s-1", ReceiptNumber: "RCPT-POS-01-00000001", CartID: "c-1", Change: "3.00"}

	var first []byte
	err := store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := idempotency.Claim(ctx, q, req)
		require.NoError(t, err)
		first, err = idempotency.Complete(ctx, q, req, body)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, `{"saleId":"s-1","receiptNumber":"RCPT-POS-01-00000001","cartId":"c-1","changeAmount":"3.00"}`, string(first))

	var replay []byte
	err = store.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		replay, err = idempotency.Claim(ctx, q, req)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, string(first), string(replay))

	canonical, err := common.CanonicalJSON(first)
	require.NoError(t, err)
	require.NotEqual(t, string(canonical), string(replay), "replay must not be a re-normalized document")
	replayCanonical, err := common.CanonicalJSON(replay)
	require.NoError(t, err)
	require.Equal(t, canonical, replayCanonical)
}

func TestClaimRolledBackWithTransaction(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	req := idempotency.Request{Endpoint: "sales.checkout", Token: "tok-2", Fingerprint: "abc"}

	err := store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := idempotency.Claim(ctx, q, req)
		require.NoError(t, err)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	err = store.InTx(ctx, func(q dbgen.Querier) error {
		replay, err := idempotency.Claim(ctx, q, req)
		require.Nil(t, replay)
		return err
	})
	require.NoError(t, err)
}

func TestClaimPendingIsConflict(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	req := idempotency.Request{Endpoint: "sales.returns", Token: "tok-3", Fingerprint: "abc"}

	err := store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := idempotency.Claim(ctx, q, req)
		require.NoError(t, err)
		_, err = idempotency.Claim(ctx, q, req)
		require.Equal(t, common.CodeConflict, common.CodeOf(err))
		return nil
	})
	require.NoError(t, err)
}

func TestLockKeyHashesToken(t *testing.T) {
	key := idempotency.LockKey("sales.checkout", "secret token")
	require.Equal(t, "idem:sales.checkout:"+common.Sha256Hex("secret token"), key)
	require.NotContains(t, key, "secret")
}

func TestGuardSerializesSameToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := &idempotency.Guard{Locker: lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond}, LockTTL: time.Second}
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- guard.Do(ctx, "sales.checkout", "tok", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err = guard.Do(short, "sales.checkout", "tok", func(context.Context) error { return nil })
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	close(release)
	require.NoError(t, <-done)

	err = guard.Do(ctx, "sales.checkout", "tok", func(context.Context) error { return errBoom })
	require.ErrorIs(t, err, errBoom)
}

func TestGuardWithoutLockerRunsDirectly(t *testing.T) {
	var g *idempotency.Guard
	called := false
	require.NoError(t, g.Do(context.Background(), "e", "t", func(context.Context) error {
		called = true
		return nil
	}))
	require.True(t, called)
}
