package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/promotion"
	"github.com/noah-isme/backend-pos/internal/rounding"
	"github.com/noah-isme/backend-pos/internal/tax"
)

// Request identifies what to price.
type Request struct {
	StoreID    pgtype.UUID
	At         time.Time
	Lines      []dbgen.CartLine
	TenderType string
}

// Price resolves products, unit prices, tax treatments and promotions inside the
// caller's transaction and computes the summary. Overridden unit prices are kept;
// every other line is re-resolved from the catalog at req.At.
func Price(ctx context.Context, q dbgen.Querier, req Request) (Summary, error) {
	store, err := q.GetStore(ctx, req.StoreID)
	if err != nil {
		if db.IsNotFound(err) {
			return Summary{}, common.NotFound("store not found")
		}
		return Summary{}, common.Internal("unable to load store", err)
	}
	products, err := loadProducts(ctx, q, req.Lines)
	if err != nil {
		return Summary{}, err
	}
	taxes := &tax.Cache{Q: q, StoreID: req.StoreID, At: req.At}
	items := make([]Item, 0, len(req.Lines))
	for _, l := range req.Lines {
		product, ok := products[l.ProductID.Bytes]
		if !ok {
			return Summary{}, common.NotFound("product for line %d not found", l.LineNo)
		}
		if !product.Active {
			return Summary{}, common.Validation("product %s is not active", product.Sku)
		}
		unitPrice := l.UnitPrice
		if !l.PriceOverridden {
			unitPrice, _, err = catalog.PriceAt(ctx, q, req.StoreID, product, req.At)
			if err != nil {
				return Summary{}, err
			}
		}
		treatment, err := taxes.For(ctx, product)
		if err != nil {
			return Summary{}, err
		}
		items = append(items, Item{
			LineID:    l.ID,
			LineNo:    l.LineNo,
			ProductID: uuid.UUID(product.ID.Bytes),
			Sku:       product.Sku,
			Quantity:  l.Quantity,
			UnitPrice: unitPrice,
			Tax:       treatment,
		})
	}
	var promos []promotion.Promotion
	if len(items) > 0 {
		promos, err = promotion.Load(ctx, q, store.MerchantID)
		if err != nil {
			return Summary{}, err
		}
	}
	summary, err := Compute(items, promos, req.At)
	if err != nil {
		return Summary{}, err
	}
	if req.TenderType == "" {
		return summary, nil
	}
	rounded, err := rounding.Resolve(ctx, q, req.StoreID, req.TenderType, summary.Gross)
	if err != nil {
		return Summary{}, err
	}
	return summary.WithRounding(rounded), nil
}

// Persist writes line pricing and cart totals.
func Persist(ctx context.Context, q dbgen.Querier, cartID pgtype.UUID, status string, at time.Time, s Summary) (dbgen.Cart, error) {
	for _, l := range s.Lines {
		if err := q.UpdateCartLinePricing(ctx, dbgen.UpdateCartLinePricingParams{
			ID:             l.LineID,
			UnitPrice:      l.UnitPrice,
			LineAmount:     l.LineAmount,
			Discount:       l.Discount,
			NetAmount:      l.Net,
			TaxAmount:      l.Tax,
			GrossAmount:    l.Gross,
			TaxRatePercent: l.TaxRatePercent,
			TaxExempt:      l.TaxExempt,
		}); err != nil {
			return dbgen.Cart{}, common.Internal("unable to update cart line pricing", err)
		}
	}
	cart, err := q.UpdateCartTotals(ctx, dbgen.UpdateCartTotalsParams{
		ID:                 cartID,
		Status:             status,
		PricingAt:          pgtype.Timestamptz{Time: at, Valid: true},
		SubtotalNet:        s.Subtotal,
		TotalDiscount:      s.Discount,
		TotalTax:           s.Tax,
		TotalGross:         s.Gross,
		RoundingAdjustment: s.RoundingAdjustment,
		TotalPayable:       s.Payable,
		AppliedPromotionID: s.PromotionID(),
	})
	if err != nil {
		return dbgen.Cart{}, common.Internal("unable to update cart totals", err)
	}
	return cart, nil
}

func loadProducts(ctx context.Context, q dbgen.Querier, lines []dbgen.CartLine) (map[[16]byte]dbgen.Product, error) {
	if len(lines) == 0 {
		return map[[16]byte]dbgen.Product{}, nil
	}
	ids := make([]pgtype.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	rows, err := q.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, common.Internal("unable to load products", err)
	}
	out := make(map[[16]byte]dbgen.Product, len(rows))
	for _, p := range rows {
		out[p.ID.Bytes] = p
	}
	return out, nil
}
