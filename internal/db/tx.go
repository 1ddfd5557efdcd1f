// Package db holds the transaction plumbing shared by the domain services.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q dbgen.Querier) error) error
}

// Store is the full persistence surface: direct reads plus transactions.
type Store interface {
	dbgen.Querier
	TxRunner
}

// PoolStore implements Store on top of a pgx pool.
type PoolStore struct {
	*dbgen.Queries
	Pool *pgxpool.Pool
}

// NewPoolStore wires sqlc queries to the pool.
func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{Queries: dbgen.New(pool), Pool: pool}
}

// InTx begins a transaction, runs fn and commits when fn succeeds.
func (s *PoolStore) InTx(ctx context.Context, fn func(q dbgen.Querier) error) error {
	if s == nil || s.Pool == nil {
		return errors.New("database pool not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsCheckViolation reports whether err is a check constraint violation.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// ParseUUID converts a textual identifier into a pgtype.UUID.
func ParseUUID(value string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// NewUUID returns a fresh random identifier.
func NewUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

// UUIDString renders id, or the empty string when it is null.
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// UUIDEqual compares two nullable identifiers.
func UUIDEqual(a, b pgtype.UUID) bool {
	return a.Valid == b.Valid && a.Bytes == b.Bytes
}

// Text wraps s as a nullable text value, null when empty.
func Text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// IsLockConflict reports whether err is a serialization failure or lock timeout.
func IsLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "55P03" || pgErr.Code == "40P01")
}
