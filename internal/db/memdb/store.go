// Package memdb is an in-memory implementation of the sqlc querier used by
// tests and by the memory storage driver. Transactions are serialized and
// rolled back by restoring a snapshot of every table.
package memdb

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

type key = [16]byte

type tables struct {
	stores           map[key]dbgen.Store
	terminals        map[key]dbgen.Terminal
	taxGroups        map[key]dbgen.TaxGroup
	products         map[key]dbgen.Product
	storePrices      []dbgen.StorePrice
	storeTaxRules    []dbgen.StoreTaxRule
	roundingPolicies []dbgen.RoundingPolicy
	promotions       map[int64]dbgen.Promotion
	promotionRules   []dbgen.PromotionRule
	promotionWindows []dbgen.PromotionWindow
	lots             map[int64]dbgen.InventoryLot
	balances         map[int64]dbgen.InventoryLotBalance
	movements        []dbgen.InventoryMovement
	movementLots     []dbgen.InventoryMovementLot
	carts            map[key]dbgen.Cart
	cartLines        map[key]dbgen.CartLine
	receiptSeries    map[key]dbgen.ReceiptSeries
	sales            map[key]dbgen.Sale
	saleLines        map[key]dbgen.SaleLine
	payments         map[key]dbgen.Payment
	allocations      []dbgen.PaymentAllocation
	transitions      []dbgen.PaymentTransition
	saleReturns      map[key]dbgen.SaleReturn
	returnLines      []dbgen.SaleReturnLine
	idempotency      map[string]dbgen.IdempotencyKey
	fiscalDocs       map[key]dbgen.FiscalDocument
	fiscalEvents     []dbgen.FiscalEvent
	events           []dbgen.DomainEvent
	serial           int64
}

func newTables() *tables {
	return &tables{
		stores:        map[key]dbgen.Store{},
		terminals:     map[key]dbgen.Terminal{},
		taxGroups:     map[key]dbgen.TaxGroup{},
		products:      map[key]dbgen.Product{},
		promotions:    map[int64]dbgen.Promotion{},
		lots:          map[int64]dbgen.InventoryLot{},
		balances:      map[int64]dbgen.InventoryLotBalance{},
		carts:         map[key]dbgen.Cart{},
		cartLines:     map[key]dbgen.CartLine{},
		receiptSeries: map[key]dbgen.ReceiptSeries{},
		sales:         map[key]dbgen.Sale{},
		saleLines:     map[key]dbgen.SaleLine{},
		payments:      map[key]dbgen.Payment{},
		saleReturns:   map[key]dbgen.SaleReturn{},
		idempotency:   map[string]dbgen.IdempotencyKey{},
		fiscalDocs:    map[key]dbgen.FiscalDocument{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		stores:           maps.Clone(t.stores),
		terminals:        maps.Clone(t.terminals),
		taxGroups:        maps.Clone(t.taxGroups),
		products:         maps.Clone(t.products),
		storePrices:      slices.Clone(t.storePrices),
		storeTaxRules:    slices.Clone(t.storeTaxRules),
		roundingPolicies: slices.Clone(t.roundingPolicies),
		promotions:       maps.Clone(t.promotions),
		promotionRules:   slices.Clone(t.promotionRules),
		promotionWindows: slices.Clone(t.promotionWindows),
		lots:             maps.Clone(t.lots),
		balances:         maps.Clone(t.balances),
		movements:        slices.Clone(t.movements),
		movementLots:     slices.Clone(t.movementLots),
		carts:            maps.Clone(t.carts),
		cartLines:        maps.Clone(t.cartLines),
		receiptSeries:    maps.Clone(t.receiptSeries),
		sales:            maps.Clone(t.sales),
		saleLines:        maps.Clone(t.saleLines),
		payments:         maps.Clone(t.payments),
		allocations:      slices.Clone(t.allocations),
		transitions:      slices.Clone(t.transitions),
		saleReturns:      maps.Clone(t.saleReturns),
		returnLines:      slices.Clone(t.returnLines),
		idempotency:      maps.Clone(t.idempotency),
		fiscalDocs:       maps.Clone(t.fiscalDocs),
		fiscalEvents:     slices.Clone(t.fiscalEvents),
		events:           slices.Clone(t.events),
		serial:           t.serial,
	}
}

// Store is a process-local database. The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex
	data *tables
	Now  func() time.Time
}

var _ db.TxRunner = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newTables()}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// InTx runs fn with exclusive access. Any error restores the pre-transaction state.
func (s *Store) InTx(ctx context.Context, fn func(q dbgen.Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	tx := &Tx{t: s.data, now: s.now}
	if err := fn(tx); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Seed gives fn direct write access to the reference tables.
func (s *Store) Seed(fn func(seed *Seeder)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Seeder{t: s.data, now: s.now})
}

// Tx is the querier handed to transaction callbacks.
type Tx struct {
	t   *tables
	now func() time.Time
}

var _ dbgen.Querier = (*Tx)(nil)

func (tx *Tx) ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: tx.now(), Valid: true}
}

func (tx *Tx) nextSerial() int64 {
	tx.t.serial++
	return tx.t.serial
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23514", ConstraintName: constraint, Message: "new row violates check constraint"}
}
