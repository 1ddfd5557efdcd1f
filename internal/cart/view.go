package cart

import (
	"time"

	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/promotion"
	"github.com/noah-isme/backend-pos/internal/rounding"
)

// LineView renders a cart line.
type LineView struct {
	ID              string  `json:"id"`
	LineNumber      int32   `json:"lineNumber"`
	LineKey         *string `json:"lineKey"`
	ProductID       string  `json:"productId"`
	Quantity        string  `json:"quantity"`
	UnitPrice       string  `json:"unitPrice"`
	PriceOverridden bool    `json:"priceOverridden"`
	OverrideReason  *string `json:"overrideReason"`
	LineAmount      string  `json:"lineAmount"`
	Discount        string  `json:"discount"`
	NetAmount       string  `json:"netAmount"`
	TaxAmount       string  `json:"taxAmount"`
	GrossAmount     string  `json:"grossAmount"`
	TaxRatePercent  string  `json:"taxRatePercent"`
	TaxExempt       bool    `json:"taxExempt"`
}

// Totals renders the computed cart totals.
type Totals struct {
	Subtotal           string `json:"subtotal"`
	Discount           string `json:"discount"`
	Tax                string `json:"tax"`
	Gross              string `json:"gross"`
	RoundingAdjustment string `json:"roundingAdjustment"`
	Payable            string `json:"payable"`
}

// RoundingView renders a rounding result.
type RoundingView struct {
	Applied    bool   `json:"applied"`
	TenderType string `json:"tenderType,omitempty"`
	Method     string `json:"method,omitempty"`
	Increment  string `json:"increment,omitempty"`
	Original   string `json:"original"`
	Rounded    string `json:"rounded"`
	Adjustment string `json:"adjustment"`
}

// Snapshot is the API rendering of a cart.
type Snapshot struct {
	ID                 string                 `json:"id"`
	CashierID          string                 `json:"cashierId"`
	StoreID            string                 `json:"storeId"`
	TerminalID         string                 `json:"terminalId"`
	Status             string                 `json:"status"`
	PricingAt          time.Time              `json:"pricingAt"`
	ParkedReference    *string                `json:"parkedReference"`
	ParkedUntil        *time.Time             `json:"parkedUntil"`
	Lines              []LineView             `json:"lines"`
	Totals             Totals                 `json:"totals"`
	AppliedPromotionID *int64                 `json:"appliedPromotionId"`
	AppliedPromotion   *promotion.AppliedView `json:"appliedPromotion,omitempty"`
	RoundingPreview    *RoundingView          `json:"roundingPreview,omitempty"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// NewSnapshot renders a cart with its lines.
func NewSnapshot(c dbgen.Cart, lines []dbgen.CartLine) Snapshot {
	out := Snapshot{
		ID:          db.UUIDString(c.ID),
		CashierID:   db.UUIDString(c.CashierID),
		StoreID:     db.UUIDString(c.StoreID),
		TerminalID:  db.UUIDString(c.TerminalID),
		Status:      c.Status,
		PricingAt:   c.PricingAt.Time,
		Lines:       make([]LineView, 0, len(lines)),
		UpdatedAt:   c.UpdatedAt.Time,
		ParkedUntil: timePtr(c.ParkedUntil.Time, c.ParkedUntil.Valid),
		Totals: Totals{
			Subtotal:           money.Format(c.SubtotalNet),
			Discount:           money.Format(c.TotalDiscount),
			Tax:                money.Format(c.TotalTax),
			Gross:              money.Format(c.TotalGross),
			RoundingAdjustment: money.Format(c.RoundingAdjustment),
			Payable:            money.Format(c.TotalPayable),
		},
	}
	if c.ParkedReference.Valid {
		ref := c.ParkedReference.String
		out.ParkedReference = &ref
	}
	if c.AppliedPromotionID.Valid {
		id := c.AppliedPromotionID.Int64
		out.AppliedPromotionID = &id
	}
	for _, l := range lines {
		v := LineView{
			ID:              db.UUIDString(l.ID),
			LineNumber:      l.LineNo,
			ProductID:       db.UUIDString(l.ProductID),
			Quantity:        money.FormatQuantity(l.Quantity),
			UnitPrice:       money.Format(l.UnitPrice),
			PriceOverridden: l.PriceOverridden,
			LineAmount:      money.Format(l.LineAmount),
			Discount:        money.Format(l.Discount),
			NetAmount:       money.Format(l.NetAmount),
			TaxAmount:       money.Format(l.TaxAmount),
			GrossAmount:     money.Format(l.GrossAmount),
			TaxRatePercent:  money.FormatRate(l.TaxRatePercent),
			TaxExempt:       l.TaxExempt,
		}
		if l.LineKey.Valid {
			k := l.LineKey.String
			v.LineKey = &k
		}
		if l.OverrideReason.Valid {
			r := l.OverrideReason.String
			v.OverrideReason = &r
		}
		out.Lines = append(out.Lines, v)
	}
	return out
}

func (s Snapshot) withPricing(summary pricing.Summary) Snapshot {
	if summary.Promotion != nil {
		s.AppliedPromotion = &promotion.AppliedView{
			ID:            summary.Promotion.PromotionID,
			Code:          summary.Promotion.Code,
			Name:          summary.Promotion.Name,
			Priority:      summary.Promotion.Priority,
			TotalDiscount: money.Format(summary.Promotion.TotalDiscount),
			Explanations:  summary.Promotion.Explanations,
		}
	}
	return s
}

// NewRoundingView renders a rounding result.
func NewRoundingView(r rounding.Result) *RoundingView {
	v := &RoundingView{
		Applied:    r.Applied,
		TenderType: r.TenderType,
		Method:     string(r.Method),
		Original:   money.Format(r.Original),
		Rounded:    money.Format(r.Rounded),
		Adjustment: money.Format(r.Adjustment),
	}
	if r.Applied {
		v.Increment = money.Format(r.Increment)
	}
	return v
}

func timePtr(t time.Time, valid bool) *time.Time {
	if !valid {
		return nil
	}
	return &t
}
