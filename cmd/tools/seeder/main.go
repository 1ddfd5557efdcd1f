package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/obs"
)

const merchantID = "5b0a3c1e-8d57-4e0f-9a51-2c6b7d0e4f10"

type product struct {
	sku, name, taxGroup, price string
	openPrice                  bool
}

type lot struct {
	sku, code, expiry, quantity string
}

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info").With().Str("component", "seeder").Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	tx, err := db.Begin()
	if err != nil {
		logger.Fatal().Err(err).Msg("begin")
	}
	defer func() { _ = tx.Rollback() }()

	s := seeder{tx: tx, log: logger}
	storeID := s.id(`INSERT INTO stores (merchant_id, code, name) VALUES ($1, 'MAIN', 'Main Street')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name RETURNING id`, merchantID)
	for _, code := range []string{"POS-01", "POS-02"} {
		s.exec(`INSERT INTO terminals (store_id, code) VALUES ($1, $2) ON CONFLICT (store_id, code) DO NOTHING`, storeID, code)
	}

	groups := map[string]string{}
	for code, rate := range map[string]string{"STD": "10", "ZERO": "0"} {
		groups[code] = s.id(`INSERT INTO tax_groups (merchant_id, code, rate_percent, zero_rated) VALUES ($1, $2, $3, $4)
			ON CONFLICT (merchant_id, code) DO UPDATE SET rate_percent = EXCLUDED.rate_percent RETURNING id`,
			merchantID, code, rate, rate == "0")
		s.exec(`INSERT INTO store_tax_rules (store_id, tax_group_id, tax_mode)
			SELECT $1, $2, 'INCLUSIVE' WHERE NOT EXISTS (
				SELECT 1 FROM store_tax_rules WHERE store_id = $1 AND tax_group_id = $2 AND active)`, storeID, groups[code])
	}

	s.exec(`INSERT INTO rounding_policies (store_id, tender_type, rounding_method, increment_amount)
		VALUES ($1, 'CASH', 'NEAREST', 0.05) ON CONFLICT DO NOTHING`, storeID)

	products := []product{
		{"MILK-1L", "Whole milk 1L", "STD", "1.89", false},
		{"BREAD-WHT", "White bread loaf", "ZERO", "2.45", false},
		{"COFFEE-250", "Ground coffee 250g", "STD", "6.99", false},
		{"APPLE-KG", "Apples per kg", "ZERO", "3.20", false},
		{"GIFT-OPEN", "Gift wrap (open price)", "STD", "0.00", true},
	}
	ids := map[string]string{}
	for _, p := range products {
		ids[p.sku] = s.id(`INSERT INTO products (merchant_id, sku, name, tax_group_id, base_price, open_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (merchant_id, sku) DO UPDATE SET name = EXCLUDED.name, base_price = EXCLUDED.base_price RETURNING id`,
			merchantID, p.sku, p.name, groups[p.taxGroup], p.price, p.openPrice)
	}

	promoID := s.id(`INSERT INTO promotions (merchant_id, code, name, priority) VALUES ($1, 'COFFEE10', 'Coffee 10% off', 10)
		ON CONFLICT (merchant_id, code) DO UPDATE SET name = EXCLUDED.name RETURNING id::text`, merchantID)
	s.exec(`INSERT INTO promotion_rules (promotion_id, rule_type, target_product_id, percent_value, min_quantity)
		SELECT $1::bigint, 'PRODUCT_PERCENTAGE', $2, 10, 1 WHERE NOT EXISTS (
			SELECT 1 FROM promotion_rules WHERE promotion_id = $1::bigint)`, promoID, ids["COFFEE-250"])
	basketID := s.id(`INSERT INTO promotions (merchant_id, code, name, priority) VALUES ($1, 'BASKET5', '5 off baskets over 50', 5)
		ON CONFLICT (merchant_id, code) DO UPDATE SET name = EXCLUDED.name RETURNING id::text`, merchantID)
	s.exec(`INSERT INTO promotion_rules (promotion_id, rule_type, fixed_amount, min_subtotal)
		SELECT $1::bigint, 'CART_FIXED', 5, 50 WHERE NOT EXISTS (
			SELECT 1 FROM promotion_rules WHERE promotion_id = $1::bigint)`, basketID)

	for _, id := range []string{promoID, basketID} {
		s.exec(`INSERT INTO promotion_windows (promotion_id, starts_at)
			SELECT $1::bigint, now() WHERE NOT EXISTS (
				SELECT 1 FROM promotion_windows WHERE promotion_id = $1::bigint)`, id)
	}

	lots := []lot{
		{"MILK-1L", "MILK-A", "2027-01-10", "40"},
		{"MILK-1L", "MILK-B", "2027-02-01", "60"},
		{"BREAD-WHT", "BREAD-1", "2027-01-05", "30"},
		{"COFFEE-250", "CF-2026-11", "2027-11-30", "25"},
		{"APPLE-KG", "APL-1", "", "120.500"},
		{"GIFT-OPEN", "GIFT", "", "1000"},
	}
	for _, l := range lots {
		var expiry any
		if l.expiry != "" {
			expiry = l.expiry
		}
		lotID := s.id(`INSERT INTO inventory_lots (store_id, product_id, lot_code, expiry_date) VALUES ($1, $2, $3, $4)
			ON CONFLICT (store_id, product_id, lot_code) DO UPDATE SET expiry_date = EXCLUDED.expiry_date RETURNING id::text`,
			storeID, ids[l.sku], l.code, expiry)
		s.exec(`INSERT INTO inventory_lot_balances (lot_id, quantity_on_hand) VALUES ($1::bigint, $2)
			ON CONFLICT (lot_id) DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand, updated_at = now()`, lotID, l.quantity)
	}

	if err := tx.Commit(); err != nil {
		logger.Fatal().Err(err).Msg("commit")
	}
	logger.Info().Str("store_id", storeID).Int("products", len(products)).Int("lots", len(lots)).Msg("seeding completed")
}

type seeder struct {
	tx  *sql.Tx
	log zerolog.Logger
}

func (s seeder) id(query string, args ...any) string {
	var id string
	if err := s.tx.QueryRow(query, args...).Scan(&id); err != nil {
		s.log.Fatal().Err(err).Str("query", query).Msg("seed")
	}
	return id
}

func (s seeder) exec(query string, args ...any) {
	if _, err := s.tx.Exec(query, args...); err != nil {
		s.log.Fatal().Err(err).Str("query", query).Msg("seed")
	}
}
