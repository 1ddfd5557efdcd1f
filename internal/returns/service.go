// Package returns credits returned sale quantities back to the lots they were
// sold from and records the refund amount owed.
package returns

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/idempotency"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/payment"
)

// Endpoint scopes return idempotency records.
const Endpoint = "sales.returns"

// CreditNoteDispatcher hands a committed return to the fiscal collaborator.
type CreditNoteDispatcher interface {
	DispatchCreditNote(ctx context.Context, returnID pgtype.UUID) error
}

type LineInput struct {
	SaleLineID string          `json:"saleLineId" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Input is the body of POST /sales/{id}/returns.
type Input struct {
	Lines            []LineInput `json:"lines" validate:"required,min=1,max=200,dive"`
	Reason           string      `json:"reason" validate:"required,max=200"`
	RefundTenderType *string     `json:"refundTenderType,omitempty" validate:"omitempty,max=40"`
}

type LotView struct {
	LotID    int64  `json:"lotId"`
	Quantity string `json:"quantity"`
}

type LineView struct {
	SaleLineID  string    `json:"saleLineId"`
	ProductID   string    `json:"productId"`
	Quantity    string    `json:"quantity"`
	GrossAmount string    `json:"grossAmount"`
	Lots        []LotView `json:"lots"`
}

// Output is the committed return. Replays return its stored encoding.
type Output struct {
	ReturnID         string     `json:"returnId"`
	SaleID           string     `json:"saleId"`
	ReceiptNumber    string     `json:"receiptNumber"`
	ReturnReference  string     `json:"returnReference"`
	Reason           string     `json:"reason"`
	RefundTenderType *string    `json:"refundTenderType"`
	TotalGross       string     `json:"totalGross"`
	Lines            []LineView `json:"lines"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type Result struct {
	Body     []byte
	Replayed bool
}

type Service struct {
	DB     db.TxRunner
	Guard  *idempotency.Guard
	Bus    *events.Bus
	Fiscal CreditNoteDispatcher
	Now    func() time.Time
	Logger zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Prorate returns the gross owed for returning qty of a line that sold soldQty
// for soldGross. When the return exhausts the line, the remainder not yet
// refunded is returned so the refunds sum to the line gross exactly.
func Prorate(soldGross, soldQty, returnedQty, returnedGross, qty decimal.Decimal) decimal.Decimal {
	if returnedQty.Add(qty).GreaterThanOrEqual(soldQty) {
		return soldGross.Sub(returnedGross)
	}
	return money.Round(soldGross.Mul(qty).Div(soldQty))
}

// Return books a return against saleID. token and fingerprint identify the
// request for replay.
func (s *Service) Return(ctx context.Context, saleID, token, fingerprint string, in Input) (Result, error) {
	if s == nil || s.DB == nil {
		return Result{}, common.Internal("returns service not configured", nil)
	}
	ctx, span := otel.Tracer("returns.Service").Start(ctx, "ReturnsService.Return")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	if strings.TrimSpace(token) == "" {
		return Result{}, common.ValidationErr(common.ErrIdempotencyKeyRequired, "Idempotency-Key header is required")
	}
	id, err := db.ParseUUID(saleID)
	if err != nil {
		return Result{}, common.NotFound("sale not found")
	}
	if err := common.ValidateStruct(in); err != nil {
		return Result{}, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return Result{}, common.Validation("reason is required")
	}
	var tender *string
	if in.RefundTenderType != nil {
		t, err := payment.NormalizeTender(*in.RefundTenderType)
		if err != nil {
			return Result{}, err
		}
		tender = &t
	}
	lines, err := normalizeLines(in.Lines)
	if err != nil {
		return Result{}, err
	}

	req := idempotency.Request{Endpoint: Endpoint, Token: token, Fingerprint: fingerprint}
	var (
		res      Result
		ret      dbgen.SaleReturn
		invoiced bool
		recorded []dbgen.DomainEvent
	)
	err = s.Guard.Do(ctx, Endpoint, token, func(ctx context.Context) error {
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
			sale, err := q.GetSaleForUpdate(ctx, id)
			if err != nil {
				if db.IsNotFound(err) {
					return common.NotFound("sale not found")
				}
				if db.IsLockConflict(err) {
					return common.Conflict("sale is being returned by another request")
				}
				return common.Internal("unable to lock sale", err)
			}
			invoiced = sale.InvoiceRequired
			out, row, ev, err := s.book(ctx, q, sale, lines, reason, tender)
			if err != nil {
				return err
			}
			ret = row
			recorded = append(recorded, ev)
			body, err := idempotency.Complete(ctx, q, req, out)
			if err != nil {
				return err
			}
			res = Result{Body: body}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	if res.Replayed {
		obs.IncReplay(Endpoint)
		return res, nil
	}
	log := s.Logger.With().Str("sale_id", saleID).Str("return_reference", ret.ReturnReference).Logger()
	log.Info().Msg("return committed")
	if err := s.Bus.Publish(ctx, recorded...); err != nil {
		log.Warn().Err(err).Msg("return event delivery failed")
	}
	if s.Fiscal != nil && invoiced {
		if err := s.Fiscal.DispatchCreditNote(context.WithoutCancel(ctx), ret.ID); err != nil {
			log.Warn().Err(err).Msg("fiscal credit note dispatch failed")
		}
	}
	return res, nil
}

type lineRequest struct {
	id  pgtype.UUID
	qty decimal.Decimal
}

func normalizeLines(in []LineInput) ([]lineRequest, error) {
	out := make([]lineRequest, 0, len(in))
	seen := map[[16]byte]struct{}{}
	for i, l := range in {
		id, err := db.ParseUUID(l.SaleLineID)
		if err != nil {
			return nil, common.Validation("lines[%d].saleLineId is invalid", i)
		}
		if _, dup := seen[id.Bytes]; dup {
			return nil, common.Validation("lines[%d].saleLineId is repeated", i)
		}
		seen[id.Bytes] = struct{}{}
		qty, err := money.Quantity(l.Quantity)
		if err != nil {
			return nil, common.ValidationErr(err, "lines[%d].quantity is invalid", i)
		}
		out = append(out, lineRequest{id: id, qty: qty})
	}
	return out, nil
}

func (s *Service) book(ctx context.Context, q dbgen.Querier, sale dbgen.Sale, reqs []lineRequest, reason string, tender *string) (Output, dbgen.SaleReturn, dbgen.DomainEvent, error) {
	var (
		none   Output
		noneR  dbgen.SaleReturn
		noneEv dbgen.DomainEvent
	)
	saleLines, err := q.ListSaleLines(ctx, sale.ID)
	if err != nil {
		return none, noneR, noneEv, common.Internal("unable to load sale lines", err)
	}
	byID := make(map[[16]byte]dbgen.SaleLine, len(saleLines))
	for _, l := range saleLines {
		byID[l.ID.Bytes] = l
	}

	type planned struct {
		line  dbgen.SaleLine
		qty   decimal.Decimal
		gross decimal.Decimal
	}
	plan := make([]planned, 0, len(reqs))
	total := decimal.Zero
	for _, r := range reqs {
		line, ok := byID[r.id.Bytes]
		if !ok {
			return none, noneR, noneEv, common.NotFound("sale line %s not found on sale", db.UUIDString(r.id))
		}
		returned, err := q.SumReturnedBySaleLine(ctx, line.ID)
		if err != nil {
			return none, noneR, noneEv, common.Internal("unable to load returned quantity", err)
		}
		if returned.Quantity.Add(r.qty).GreaterThan(line.Quantity) {
			return none, noneR, noneEv, common.Conflict("line %d: returning %s exceeds remaining %s",
				line.LineNumber, money.FormatQuantity(r.qty), money.FormatQuantity(line.Quantity.Sub(returned.Quantity)))
		}
		gross := Prorate(line.GrossAmount, line.Quantity, returned.Quantity, returned.GrossAmount, r.qty)
		total = total.Add(gross)
		plan = append(plan, planned{line: line, qty: r.qty, gross: gross})
	}

	count, err := q.CountSaleReturns(ctx, sale.ID)
	if err != nil {
		return none, noneR, noneEv, common.Internal("unable to count returns", err)
	}
	reference := fmt.Sprintf("RET-%s-%d", sale.ReceiptNumber, count+1)
	var tenderText pgtype.Text
	if tender != nil {
		tenderText = db.Text(*tender)
	}
	ret, err := q.InsertSaleReturn(ctx, dbgen.InsertSaleReturnParams{
		SaleID:           sale.ID,
		ReturnReference:  reference,
		Reason:           reason,
		RefundTenderType: tenderText,
		TotalGross:       total,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return none, noneR, noneEv, common.Conflict("return %s already exists", reference)
		}
		return none, noneR, noneEv, common.Internal("unable to record return", err)
	}

	slices.SortStableFunc(plan, func(a, b planned) int { return bytes.Compare(a.line.ProductID.Bytes[:], b.line.ProductID.Bytes[:]) })
	views := make([]LineView, 0, len(plan))
	for _, p := range plan {
		if _, err := q.InsertSaleReturnLine(ctx, dbgen.InsertSaleReturnLineParams{
			SaleReturnID: ret.ID,
			SaleLineID:   p.line.ID,
			Quantity:     p.qty,
			GrossAmount:  p.gross,
		}); err != nil {
			return none, noneR, noneEv, common.Internal("unable to record return line", err)
		}
		credited, err := inventory.CreditReturn(ctx, q, inventory.ReturnRequest{
			StoreID:    sale.StoreID,
			ProductID:  p.line.ProductID,
			SaleLineID: p.line.ID,
			Quantity:   p.qty,
			Reference:  reference,
		})
		if err != nil {
			return none, noneR, noneEv, err
		}
		lots := make([]LotView, 0, len(credited))
		for _, a := range credited {
			lots = append(lots, LotView{LotID: a.LotID, Quantity: money.FormatQuantity(a.Quantity)})
		}
		views = append(views, LineView{
			SaleLineID:  db.UUIDString(p.line.ID),
			ProductID:   db.UUIDString(p.line.ProductID),
			Quantity:    money.FormatQuantity(p.qty),
			GrossAmount: money.Format(p.gross),
			Lots:        lots,
		})
	}

	ev, err := events.Record(ctx, q, events.TopicSaleReturned, ret.ID, map[string]any{
		"returnId":        db.UUIDString(ret.ID),
		"saleId":          db.UUIDString(sale.ID),
		"returnReference": reference,
		"totalGross":      money.Format(total),
	})
	if err != nil {
		return none, noneR, noneEv, common.Internal("unable to record return event", err)
	}
	return Output{
		ReturnID:         db.UUIDString(ret.ID),
		SaleID:           db.UUIDString(sale.ID),
		ReceiptNumber:    sale.ReceiptNumber,
		ReturnReference:  reference,
		Reason:           reason,
		RefundTenderType: tender,
		TotalGross:       money.Format(total),
		Lines:            views,
		CreatedAt:        s.now(),
	}, ret, ev, nil
}
