package memdb

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// Retail is the reference data seeded by SeedRetail.
type Retail struct {
	MerchantID pgtype.UUID
	Store      dbgen.Store
	Terminal   dbgen.Terminal
	Standard   dbgen.TaxGroup
	ZeroRated  dbgen.TaxGroup
	ProductA   dbgen.Product
	ProductB   dbgen.Product
	OpenItem   dbgen.Product
}

// RetailOptions tunes SeedRetail.
type RetailOptions struct {
	TaxMode      string
	CashRounding string
	CashStep     string
}

// SeedRetail seeds one store with a terminal, two tax groups and three products:
// SKU-A at 10.00 and SKU-B at 5.00 in the 10% group, and an open-price zero-rated item.
func SeedRetail(s *Store, opts RetailOptions) Retail {
	if opts.TaxMode == "" {
		opts.TaxMode = "EXCLUSIVE"
	}
	var out Retail
	s.Seed(func(seed *Seeder) {
		out.MerchantID = newID()
		out.Store = seed.Store(dbgen.Store{MerchantID: out.MerchantID, Code: "MAIN", Name: "Main Street", Active: true})
		out.Terminal = seed.Terminal(dbgen.Terminal{StoreID: out.Store.ID, Code: "pos 01", Active: true})
		out.Standard = seed.TaxGroup(dbgen.TaxGroup{MerchantID: out.MerchantID, Code: "STD", RatePercent: decimal.NewFromInt(10)})
		out.ZeroRated = seed.TaxGroup(dbgen.TaxGroup{MerchantID: out.MerchantID, Code: "ZERO", RatePercent: decimal.Zero, ZeroRated: true})
		for _, g := range []dbgen.TaxGroup{out.Standard, out.ZeroRated} {
			seed.StoreTaxRule(dbgen.StoreTaxRule{StoreID: out.Store.ID, TaxGroupID: g.ID, TaxMode: opts.TaxMode, Active: true})
		}
		out.ProductA = seed.Product(dbgen.Product{
			MerchantID: out.MerchantID, Sku: "SKU-A", Name: "Product A", TaxGroupID: out.Standard.ID,
			BasePrice: decimal.RequireFromString("10.00"), Active: true,
		})
		out.ProductB = seed.Product(dbgen.Product{
			MerchantID: out.MerchantID, Sku: "SKU-B", Name: "Product B", TaxGroupID: out.Standard.ID,
			BasePrice: decimal.RequireFromString("5.00"), Active: true,
		})
		out.OpenItem = seed.Product(dbgen.Product{
			MerchantID: out.MerchantID, Sku: "OPEN-1", Name: "Open price item", TaxGroupID: out.ZeroRated.ID,
			BasePrice: decimal.Zero, OpenPrice: true, Active: true,
		})
		if opts.CashRounding != "" {
			seed.RoundingPolicy(dbgen.RoundingPolicy{
				StoreID:         out.Store.ID,
				TenderType:      "CASH",
				RoundingMethod:  opts.CashRounding,
				IncrementAmount: decimal.RequireFromString(opts.CashStep),
				Active:          true,
			})
		}
	})
	return out
}
