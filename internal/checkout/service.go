// Package checkout turns a priced cart into a committed sale with inventory,
// payment and receipt identity in one transaction, exactly once per client token.
package checkout

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/idempotency"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/payment"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/receipt"
)

// Endpoint scopes checkout idempotency records.
const Endpoint = "sales.checkout"

// InvoiceDispatcher hands a committed sale to the fiscal collaborator.
type InvoiceDispatcher interface {
	DispatchInvoice(ctx context.Context, saleID pgtype.UUID) error
}

// Input is the body of POST /sales/checkout.
type Input struct {
	CartID               string                    `json:"cartId" validate:"required,uuid"`
	CashierID            string                    `json:"cashierId" validate:"required,uuid"`
	TerminalID           string                    `json:"terminalId" validate:"required,uuid"`
	Payments             []payment.AllocationInput `json:"payments" validate:"required,min=1,max=20,dive"`
	CustomerRef          *string                   `json:"customerRef,omitempty" validate:"omitempty,max=120"`
	InvoiceRequired      bool                      `json:"invoiceRequired,omitempty"`
	AllowExpiredOverride bool                      `json:"allowExpiredOverride,omitempty"`
	SupervisorID         *string                   `json:"supervisorId,omitempty" validate:"omitempty,uuid"`
}

// Totals renders the settled sale totals.
type Totals struct {
	Subtotal           string `json:"subtotal"`
	Discount           string `json:"discount"`
	Tax                string `json:"tax"`
	Gross              string `json:"gross"`
	RoundingAdjustment string `json:"roundingAdjustment"`
	Payable            string `json:"payable"`
}

// Output is the settlement result. Replays return its stored encoding.
type Output struct {
	SaleID             string                   `json:"saleId"`
	CartID             string                   `json:"cartId"`
	ReceiptNumber      string                   `json:"receiptNumber"`
	PaymentID          string                   `json:"paymentId"`
	Totals             Totals                   `json:"totals"`
	AppliedPromotionID *int64                   `json:"appliedPromotionId"`
	Rounding           *cart.RoundingView       `json:"rounding"`
	Allocations        []payment.AllocationView `json:"allocations"`
	TotalAllocated     string                   `json:"totalAllocated"`
	ChangeAmount       string                   `json:"changeAmount"`
	CapturedAt         time.Time                `json:"capturedAt"`
}

// Result carries the encoded settlement and whether it was replayed.
type Result struct {
	Body     []byte
	Replayed bool
}

// Service orchestrates checkout.
type Service struct {
	DB     db.TxRunner
	Guard  *idempotency.Guard
	Bus    *events.Bus
	Fiscal InvoiceDispatcher
	// FiscalEnabled reports whether a fiscal provider is configured.
	FiscalEnabled bool
	// RequireFiscal rejects invoice-required sales while no provider is configured.
	RequireFiscal bool
	Now           func() time.Time
	Logger        zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout settles the cart named by in. token and fingerprint identify the
// request for replay; the same pair always yields the same bytes.
func (s *Service) Checkout(ctx context.Context, token, fingerprint string, in Input) (Result, error) {
	if s == nil || s.DB == nil {
		return Result{}, common.Internal("checkout service not configured", nil)
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Checkout")
	defer span.End()
	started := time.Now()

	if strings.TrimSpace(token) == "" {
		return Result{}, common.ValidationErr(common.ErrIdempotencyKeyRequired, "Idempotency-Key header is required")
	}
	if err := common.ValidateStruct(in); err != nil {
		return Result{}, err
	}
	if in.InvoiceRequired && !s.FiscalEnabled && s.RequireFiscal {
		return Result{}, common.Conflict("invoice required but fiscal provider is not configured")
	}
	if in.AllowExpiredOverride && in.SupervisorID == nil {
		return Result{}, common.Validation("supervisorId is required to sell expired lots")
	}
	cartID, _ := db.ParseUUID(in.CartID)
	cashierID, _ := db.ParseUUID(in.CashierID)
	terminalID, _ := db.ParseUUID(in.TerminalID)
	req := idempotency.Request{Endpoint: Endpoint, Token: token, Fingerprint: fingerprint}
	span.SetAttributes(attribute.String("cart.id", in.CartID))

	var (
		res      Result
		sale     dbgen.Sale
		recorded []dbgen.DomainEvent
	)
	err := s.Guard.Do(ctx, Endpoint, token, func(ctx context.Context) error {
		return s.DB.InTx(ctx, func(q dbgen.Querier) error {
			recorded = recorded[:0]
			replay, err := idempotency.Claim(ctx, q, req)
			if err != nil {
				return err
			}
			if replay != nil {
				res = Result{Body: replay, Replayed: true}
				return nil
			}
			c, err := q.GetCartForUpdate(ctx, cartID)
			if err != nil {
				if db.IsNotFound(err) {
					return common.NotFound("cart not found")
				}
				if db.IsLockConflict(err) {
					return common.Conflict("cart is being checked out by another request")
				}
				return common.Internal("unable to lock cart", err)
			}
			if !cart.Editable(c.Status) {
				return common.Conflict("cart is %s and cannot be checked out", c.Status)
			}
			if !db.UUIDEqual(c.CashierID, cashierID) {
				return common.Validation("cart belongs to another cashier")
			}
			if !db.UUIDEqual(c.TerminalID, terminalID) {
				return common.Validation("cart was opened on another terminal")
			}
			settled, err := s.settle(ctx, q, c, in)
			if err != nil {
				return err
			}
			recorded = append(recorded, settled.event)
			sale = settled.sale
			body, err := idempotency.Complete(ctx, q, req, settled.out)
			if err != nil {
				return err
			}
			res = Result{Body: body}
			return nil
		})
	})
	if err != nil {
		obs.ObserveCheckout(common.CodeOf(err), started)
		span.RecordError(err)
		return Result{}, err
	}
	if res.Replayed {
		obs.IncReplay(Endpoint)
		obs.ObserveCheckout("replay", started)
		s.Logger.Info().Str("cart_id", in.CartID).Msg("checkout replayed")
		return res, nil
	}
	obs.ObserveCheckout("ok", started)
	log := obs.TillFromContext(ctx).Fields(s.Logger.With()).
		Str("sale_id", db.UUIDString(sale.ID)).
		Str("receipt_number", sale.ReceiptNumber).
		Str("cart_id", in.CartID).
		Logger()
	log.Info().Msg("checkout committed")
	if err := s.Bus.Publish(ctx, recorded...); err != nil {
		log.Warn().Err(err).Msg("sale event delivery failed")
	}
	if s.Fiscal != nil && sale.InvoiceRequired {
		if err := s.Fiscal.DispatchInvoice(context.WithoutCancel(ctx), sale.ID); err != nil {
			log.Warn().Err(err).Msg("fiscal invoice dispatch failed")
		}
	}
	return res, nil
}

type settlement struct {
	out   Output
	sale  dbgen.Sale
	event dbgen.DomainEvent
}

// settle runs the mutating part of checkout on a locked, editable cart.
func (s *Service) settle(ctx context.Context, q dbgen.Querier, c dbgen.Cart, in Input) (settlement, error) {
	var none settlement
	lines, err := q.ListCartLines(ctx, c.ID)
	if err != nil {
		return none, common.Internal("unable to load cart lines", err)
	}
	if len(lines) == 0 {
		return none, common.Validation("cart is empty")
	}
	terminal, err := q.GetTerminal(ctx, c.TerminalID)
	if err != nil {
		return none, common.Internal("unable to load terminal", err)
	}
	summary, err := pricing.Price(ctx, q, pricing.Request{
		StoreID:    c.StoreID,
		At:         c.PricingAt.Time,
		Lines:      lines,
		TenderType: payment.RoundingTender(in.Payments),
	})
	if err != nil {
		return none, err
	}
	breakdown, err := payment.Settle(in.Payments, summary.Payable)
	if err != nil {
		return none, err
	}
	if _, err := pricing.Persist(ctx, q, c.ID, cart.StatusCheckedOut, c.PricingAt.Time, summary); err != nil {
		return none, err
	}

	products := make([]pgtype.UUID, 0, len(summary.Lines))
	for _, l := range summary.Lines {
		products = append(products, pgtype.UUID{Bytes: l.ProductID, Valid: true})
	}
	if err := inventory.LockProducts(ctx, q, c.StoreID, products); err != nil {
		return none, err
	}
	number, err := receipt.Next(ctx, q, terminal)
	if err != nil {
		return none, err
	}
	now := s.now()
	var customer pgtype.Text
	if in.CustomerRef != nil {
		customer = db.Text(strings.TrimSpace(*in.CustomerRef))
	}
	sale, err := q.InsertSale(ctx, dbgen.InsertSaleParams{
		CartID:             c.ID,
		StoreID:            c.StoreID,
		TerminalID:         c.TerminalID,
		CashierID:          c.CashierID,
		CustomerRef:        customer,
		ReceiptNumber:      number,
		InvoiceRequired:    in.InvoiceRequired,
		SubtotalNet:        summary.Subtotal,
		TotalDiscount:      summary.Discount,
		TotalTax:           summary.Tax,
		TotalGross:         summary.Gross,
		RoundingAdjustment: summary.RoundingAdjustment,
		TotalPayable:       summary.Payable,
		AppliedPromotionID: summary.PromotionID(),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return none, common.Conflict("cart has already been checked out")
		}
		return none, common.Internal("unable to record sale", err)
	}

	type pending struct {
		line pricing.Line
		id   pgtype.UUID
	}
	allocs := make([]pending, 0, len(summary.Lines))
	for i, l := range summary.Lines {
		row, err := q.InsertSaleLine(ctx, dbgen.InsertSaleLineParams{
			SaleID:      sale.ID,
			LineNumber:  int32(i + 1),
			ProductID:   pgtype.UUID{Bytes: l.ProductID, Valid: true},
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			NetAmount:   l.Net,
			TaxAmount:   l.Tax,
			GrossAmount: l.Gross,
		})
		if err != nil {
			return none, common.Internal("unable to record sale line", err)
		}
		allocs = append(allocs, pending{line: l, id: row.ID})
	}
	slices.SortStableFunc(allocs, func(a, b pending) int { return bytes.Compare(a.line.ProductID[:], b.line.ProductID[:]) })
	for _, a := range allocs {
		if _, err := inventory.AllocateSale(ctx, q, inventory.SaleRequest{
			StoreID:      c.StoreID,
			ProductID:    pgtype.UUID{Bytes: a.line.ProductID, Valid: true},
			SaleLineID:   a.id,
			Sku:          a.line.Sku,
			Quantity:     a.line.Quantity,
			Reference:    number,
			SaleDay:      now,
			AllowExpired: in.AllowExpiredOverride,
		}); err != nil {
			return none, err
		}
	}

	p, rows, err := payment.Record(ctx, q, sale.ID, breakdown, now)
	if err != nil {
		return none, err
	}
	ev, err := events.Record(ctx, q, events.TopicSaleCheckedOut, sale.ID, map[string]any{
		"saleId":        db.UUIDString(sale.ID),
		"cartId":        db.UUIDString(c.ID),
		"receiptNumber": number,
		"payable":       money.Format(summary.Payable),
		"cashierId":     db.UUIDString(c.CashierID),
		"supervisorId":  in.SupervisorID,
	})
	if err != nil {
		return none, common.Internal("unable to record sale event", err)
	}

	out := Output{
		SaleID:        db.UUIDString(sale.ID),
		CartID:        db.UUIDString(c.ID),
		ReceiptNumber: number,
		PaymentID:     db.UUIDString(p.ID),
		Totals: Totals{
			Subtotal:           money.Format(summary.Subtotal),
			Discount:           money.Format(summary.Discount),
			Tax:                money.Format(summary.Tax),
			Gross:              money.Format(summary.Gross),
			RoundingAdjustment: money.Format(summary.RoundingAdjustment),
			Payable:            money.Format(summary.Payable),
		},
		Rounding:       cart.NewRoundingView(summary.Rounding),
		Allocations:    payment.NewAllocationViews(rows),
		TotalAllocated: money.Format(breakdown.Allocated),
		ChangeAmount:   money.Format(breakdown.Change),
		CapturedAt:     now,
	}
	if id := summary.PromotionID(); id.Valid {
		out.AppliedPromotionID = &id.Int64
	}
	return settlement{out: out, sale: sale, event: ev}, nil
}
