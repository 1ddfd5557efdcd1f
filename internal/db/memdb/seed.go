package memdb

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// Seeder inserts reference data that the API never writes itself.
type Seeder struct {
	t   *tables
	now func() time.Time
}

func (s *Seeder) ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now(), Valid: true}
}

func ensureID(id pgtype.UUID) pgtype.UUID {
	if id.Valid {
		return id
	}
	return newID()
}

// Store registers a store.
func (s *Seeder) Store(row dbgen.Store) dbgen.Store {
	row.ID = ensureID(row.ID)
	if !row.CreatedAt.Valid {
		row.CreatedAt = s.ts()
	}
	s.t.stores[row.ID.Bytes] = row
	return row
}

// Terminal registers a terminal.
func (s *Seeder) Terminal(row dbgen.Terminal) dbgen.Terminal {
	row.ID = ensureID(row.ID)
	if !row.CreatedAt.Valid {
		row.CreatedAt = s.ts()
	}
	s.t.terminals[row.ID.Bytes] = row
	return row
}

// TaxGroup registers a tax group.
func (s *Seeder) TaxGroup(row dbgen.TaxGroup) dbgen.TaxGroup {
	row.ID = ensureID(row.ID)
	s.t.taxGroups[row.ID.Bytes] = row
	return row
}

// Product registers a product.
func (s *Seeder) Product(row dbgen.Product) dbgen.Product {
	row.ID = ensureID(row.ID)
	if !row.CreatedAt.Valid {
		row.CreatedAt = s.ts()
	}
	s.t.products[row.ID.Bytes] = row
	return row
}

// StorePrice registers a store price override.
func (s *Seeder) StorePrice(row dbgen.StorePrice) dbgen.StorePrice {
	row.ID = ensureID(row.ID)
	s.t.storePrices = append(s.t.storePrices, row)
	return row
}

// StoreTaxRule registers a store tax rule.
func (s *Seeder) StoreTaxRule(row dbgen.StoreTaxRule) dbgen.StoreTaxRule {
	row.ID = ensureID(row.ID)
	s.t.storeTaxRules = append(s.t.storeTaxRules, row)
	return row
}

// RoundingPolicy registers a tender rounding policy.
func (s *Seeder) RoundingPolicy(row dbgen.RoundingPolicy) dbgen.RoundingPolicy {
	row.ID = ensureID(row.ID)
	s.t.roundingPolicies = append(s.t.roundingPolicies, row)
	return row
}

// Promotion registers a promotion, keeping the caller's id when set.
func (s *Seeder) Promotion(row dbgen.Promotion) dbgen.Promotion {
	if row.ID == 0 {
		s.t.serial++
		row.ID = s.t.serial
	} else if row.ID > s.t.serial {
		s.t.serial = row.ID
	}
	if !row.CreatedAt.Valid {
		row.CreatedAt = s.ts()
	}
	s.t.promotions[row.ID] = row
	return row
}

// PromotionRule registers a rule for an existing promotion.
func (s *Seeder) PromotionRule(row dbgen.PromotionRule) dbgen.PromotionRule {
	s.t.serial++
	row.ID = s.t.serial
	s.t.promotionRules = append(s.t.promotionRules, row)
	return row
}

// PromotionWindow registers an activity window.
func (s *Seeder) PromotionWindow(row dbgen.PromotionWindow) dbgen.PromotionWindow {
	s.t.serial++
	row.ID = s.t.serial
	s.t.promotionWindows = append(s.t.promotionWindows, row)
	return row
}

// Lot registers a lot with its on-hand balance.
func (s *Seeder) Lot(row dbgen.InventoryLot, onHand decimal.Decimal) dbgen.InventoryLot {
	if row.ID == 0 {
		s.t.serial++
		row.ID = s.t.serial
	} else if row.ID > s.t.serial {
		s.t.serial = row.ID
	}
	if !row.ReceivedAt.Valid {
		row.ReceivedAt = s.ts()
	}
	s.t.lots[row.ID] = row
	s.t.balances[row.ID] = dbgen.InventoryLotBalance{LotID: row.ID, QuantityOnHand: onHand, UpdatedAt: s.ts()}
	return row
}
