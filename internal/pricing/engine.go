// Package pricing composes promotion, tax and rounding into cart totals.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/promotion"
	"github.com/noah-isme/backend-pos/internal/rounding"
	"github.com/noah-isme/backend-pos/internal/tax"
)

// Item describes a line item ready for pricing.
type Item struct {
	LineID    pgtype.UUID
	LineNo    int32
	ProductID uuid.UUID
	Sku       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Tax       tax.Treatment
}

// Line is a priced item.
type Line struct {
	Item
	LineAmount     decimal.Decimal
	Discount       decimal.Decimal
	Net            decimal.Decimal
	Tax            decimal.Decimal
	Gross          decimal.Decimal
	TaxRatePercent decimal.Decimal
	TaxExempt      bool
}

// Summary aggregates computed pricing components.
type Summary struct {
	Lines              []Line
	LineTotal          decimal.Decimal
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	Tax                decimal.Decimal
	Gross              decimal.Decimal
	RoundingAdjustment decimal.Decimal
	Payable            decimal.Decimal
	Promotion          *promotion.Applied
	Rounding           rounding.Result
}

// Compute prices items at the given instant. Promotions discount the line amounts
// and tax is levied per line on what remains. Payable equals gross until rounding is applied.
func Compute(items []Item, promos []promotion.Promotion, at time.Time) (Summary, error) {
	input := make([]promotion.Line, 0, len(items))
	for _, it := range items {
		input = append(input, promotion.Line{ProductID: it.ProductID, Sku: it.Sku, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	outcome, err := promotion.Evaluate(input, promos, at)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Lines:     make([]Line, 0, len(items)),
		Promotion: outcome.Applied,
		LineTotal: decimal.Zero, Subtotal: decimal.Zero, Discount: decimal.Zero,
		Tax: decimal.Zero, Gross: decimal.Zero, RoundingAdjustment: decimal.Zero,
	}
	for i, it := range items {
		state := outcome.Lines[i]
		res, err := tax.Calculate(state.SubtotalAfter, it.Tax.Group, it.Tax.Rule)
		if err != nil {
			return Summary{}, err
		}
		s.Lines = append(s.Lines, Line{
			Item:           it,
			LineAmount:     state.SubtotalBefore,
			Discount:       state.Discount,
			Net:            res.Net,
			Tax:            res.Tax,
			Gross:          res.Gross,
			TaxRatePercent: res.RatePercent,
			TaxExempt:      res.Exempt,
		})
		s.LineTotal = s.LineTotal.Add(state.SubtotalBefore)
		s.Subtotal = s.Subtotal.Add(res.Net)
		s.Discount = s.Discount.Add(state.Discount)
		s.Tax = s.Tax.Add(res.Tax)
		s.Gross = s.Gross.Add(res.Gross)
	}
	s.Payable = s.Gross
	s.Rounding = rounding.NotApplied(s.Gross, "")
	return s, nil
}

// WithRounding returns s with payable set to the rounded gross.
func (s Summary) WithRounding(r rounding.Result) Summary {
	s.Rounding = r
	s.RoundingAdjustment = r.Adjustment
	s.Payable = r.Rounded
	return s
}

// PromotionID is the applied promotion identity as a nullable column value.
func (s Summary) PromotionID() pgtype.Int8 {
	if s.Promotion == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: s.Promotion.PromotionID, Valid: true}
}
