package receipt

import (
	"context"
	"strings"
	"time"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/payment"
)

// LineView renders a sale line on a receipt.
type LineView struct {
	LineNumber  int32  `json:"lineNumber"`
	ProductID   string `json:"productId"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Discount    string `json:"discount"`
	NetAmount   string `json:"netAmount"`
	TaxAmount   string `json:"taxAmount"`
	GrossAmount string `json:"grossAmount"`
}

// Journal is the sale header and lines behind a receipt number.
type Journal struct {
	ReceiptNumber      string        `json:"receiptNumber"`
	SaleID             string        `json:"saleId"`
	StoreID            string        `json:"storeId"`
	TerminalID         string        `json:"terminalId"`
	CashierID          string        `json:"cashierId"`
	CustomerRef        *string       `json:"customerRef,omitempty"`
	Subtotal           string        `json:"subtotal"`
	Discount           string        `json:"discount"`
	Tax                string        `json:"tax"`
	Gross              string        `json:"gross"`
	RoundingAdjustment string        `json:"roundingAdjustment"`
	Payable            string        `json:"payable"`
	AppliedPromotionID *int64        `json:"appliedPromotionId,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	Lines              []LineView    `json:"lines"`
	Payment            *payment.View `json:"payment,omitempty"`
}

// Service serves sale journals by receipt number.
type Service struct {
	DB db.TxRunner
}

// Get loads the journal of receiptNumber.
func (s *Service) Get(ctx context.Context, receiptNumber string) (Journal, error) {
	if s == nil || s.DB == nil {
		return Journal{}, common.Internal("receipt service not configured", nil)
	}
	number := strings.ToUpper(strings.TrimSpace(receiptNumber))
	if number == "" {
		return Journal{}, common.Validation("receipt number is required")
	}
	var out Journal
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		sale, err := q.GetSaleByReceiptNumber(ctx, number)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("receipt %s not found", number)
			}
			return common.Internal("unable to load sale", err)
		}
		out, err = Load(ctx, q, sale)
		return err
	})
	return out, err
}

// Load renders sale with its lines and payment.
func Load(ctx context.Context, q dbgen.Querier, sale dbgen.Sale) (Journal, error) {
	lines, err := q.ListSaleLines(ctx, sale.ID)
	if err != nil {
		return Journal{}, common.Internal("unable to load sale lines", err)
	}
	j := Journal{
		ReceiptNumber:      sale.ReceiptNumber,
		SaleID:             db.UUIDString(sale.ID),
		StoreID:            db.UUIDString(sale.StoreID),
		TerminalID:         db.UUIDString(sale.TerminalID),
		CashierID:          db.UUIDString(sale.CashierID),
		Subtotal:           money.Format(sale.SubtotalNet),
		Discount:           money.Format(sale.TotalDiscount),
		Tax:                money.Format(sale.TotalTax),
		Gross:              money.Format(sale.TotalGross),
		RoundingAdjustment: money.Format(sale.RoundingAdjustment),
		Payable:            money.Format(sale.TotalPayable),
		CreatedAt:          sale.CreatedAt.Time,
		Lines:              make([]LineView, 0, len(lines)),
	}
	if sale.CustomerRef.Valid {
		ref := sale.CustomerRef.String
		j.CustomerRef = &ref
	}
	if sale.AppliedPromotionID.Valid {
		id := sale.AppliedPromotionID.Int64
		j.AppliedPromotionID = &id
	}
	for _, l := range lines {
		j.Lines = append(j.Lines, LineView{
			LineNumber:  l.LineNumber,
			ProductID:   db.UUIDString(l.ProductID),
			Quantity:    money.FormatQuantity(l.Quantity),
			UnitPrice:   money.Format(l.UnitPrice),
			Discount:    money.Format(l.Discount),
			NetAmount:   money.Format(l.NetAmount),
			TaxAmount:   money.Format(l.TaxAmount),
			GrossAmount: money.Format(l.GrossAmount),
		})
	}
	p, err := q.GetPaymentBySaleID(ctx, sale.ID)
	switch {
	case err == nil:
		allocs, err := q.ListPaymentAllocations(ctx, p.ID)
		if err != nil {
			return Journal{}, common.Internal("unable to load payment allocations", err)
		}
		view := payment.NewView(p, allocs, nil)
		j.Payment = &view
	case !db.IsNotFound(err):
		return Journal{}, common.Internal("unable to load payment", err)
	}
	return j, nil
}
