package fiscal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/obs"
)

const (
	DocumentInvoice    = "INVOICE"
	DocumentCreditNote = "CREDIT_NOTE"

	StatusIssued    = "ISSUED"
	StatusFailed    = "FAILED"
	StatusSkipped   = "SKIPPED"
	StatusCancelled = "CANCELLED"

	EventIssueSucceeded      = "ISSUE_SUCCEEDED"
	EventIssueFailed         = "ISSUE_FAILED"
	EventIssueSkipped        = "ISSUE_SKIPPED"
	EventCreditNoteSucceeded = "CREDIT_NOTE_SUCCEEDED"
	EventCreditNoteFailed    = "CREDIT_NOTE_FAILED"
	EventCancelSucceeded     = "CANCEL_SUCCEEDED"
	EventCancelFailed        = "CANCEL_FAILED"

	disabledProviderCode = "DISABLED"
)

// ErrIssueFailed marks a document left FAILED so background callers retry.
var ErrIssueFailed = errors.New("fiscal: document not issued")

type EventView struct {
	EventType string    `json:"eventType"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the API view of a fiscal document.
type Document struct {
	ID                 string      `json:"id"`
	SaleID             string      `json:"saleId"`
	SaleReturnID       *string     `json:"saleReturnId"`
	DocumentType       string      `json:"documentType"`
	Status             string      `json:"status"`
	ProviderCode       string      `json:"providerCode"`
	RequestReference   *string     `json:"requestReference"`
	ExternalDocumentID *string     `json:"externalDocumentId"`
	Message            *string     `json:"message"`
	IssuedAt           *time.Time  `json:"issuedAt"`
	CancelledAt        *time.Time  `json:"cancelledAt"`
	Events             []EventView `json:"events,omitempty"`
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func NewDocument(d dbgen.FiscalDocument, events []dbgen.FiscalEvent) Document {
	out := Document{
		ID:                 db.UUIDString(d.ID),
		SaleID:             db.UUIDString(d.SaleID),
		DocumentType:       d.DocumentType,
		Status:             d.Status,
		ProviderCode:       d.ProviderCode,
		RequestReference:   textPtr(d.RequestReference),
		ExternalDocumentID: textPtr(d.ExternalDocumentID),
		Message:            textPtr(d.Message),
		IssuedAt:           timePtr(d.IssuedAt),
		CancelledAt:        timePtr(d.CancelledAt),
	}
	if d.SaleReturnID.Valid {
		id := db.UUIDString(d.SaleReturnID)
		out.SaleReturnID = &id
	}
	for _, e := range events {
		out.Events = append(out.Events, EventView{EventType: e.EventType, Message: textPtr(e.Message), CreatedAt: e.CreatedAt.Time})
	}
	return out
}

// Service records fiscal documents. Provider calls run outside any
// transaction; only their outcome is written.
type Service struct {
	DB       db.TxRunner
	Provider Provider
	// Enabled is false when no provider is configured; invoices are then SKIPPED.
	Enabled bool
	Now     func() time.Time
	Logger  zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ready() error {
	if s == nil || s.DB == nil {
		return common.Internal("fiscal service not configured", nil)
	}
	return nil
}

func (s *Service) providerCode() string {
	if !s.Enabled || s.Provider == nil {
		return disabledProviderCode
	}
	return s.Provider.Code()
}

// outcome is the state a document moves to after a provider exchange.
type outcome struct {
	status      string
	event       string
	external    pgtype.Text
	message     pgtype.Text
	issuedAt    pgtype.Timestamptz
	cancelledAt pgtype.Timestamptz
}

func normalizeMessage(msg string) pgtype.Text {
	return db.Text(strings.TrimSpace(msg))
}

func (s *Service) issued(res Result, err error, ok, failed string) outcome {
	if err != nil {
		return outcome{status: StatusFailed, event: failed, message: db.Text("provider exception: " + errorKind(err))}
	}
	if !res.Success {
		return outcome{status: StatusFailed, event: failed, external: db.Text(res.ExternalDocumentID), message: normalizeMessage(res.Message)}
	}
	return outcome{
		status:   StatusIssued,
		event:    ok,
		external: db.Text(res.ExternalDocumentID),
		message:  normalizeMessage(res.Message),
		issuedAt: pgtype.Timestamptz{Time: s.now(), Valid: true},
	}
}

// IssueInvoice issues the invoice of an invoice-required sale. Sales without
// the flag return a nil document. A document already ISSUED, SKIPPED or
// CANCELLED is returned unchanged; a FAILED one is retried.
func (s *Service) IssueInvoice(ctx context.Context, saleID pgtype.UUID) (*Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("fiscal.Service").Start(ctx, "FiscalService.IssueInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", db.UUIDString(saleID)))

	var (
		sale     dbgen.Sale
		existing *dbgen.FiscalDocument
	)
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		sale, err = q.GetSale(ctx, saleID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("sale not found")
			}
			return common.Internal("unable to load sale", err)
		}
		doc, err := q.GetFiscalDocumentForSale(ctx, dbgen.GetFiscalDocumentForSaleParams{SaleID: saleID, DocumentType: DocumentInvoice})
		if err == nil {
			existing = &doc
			return nil
		}
		if !db.IsNotFound(err) {
			return common.Internal("unable to load fiscal document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sale.InvoiceRequired {
		return nil, nil
	}
	if existing != nil && existing.Status != StatusFailed {
		out := NewDocument(*existing, nil)
		return &out, nil
	}

	var result outcome
	if !s.Enabled || s.Provider == nil {
		result = outcome{status: StatusSkipped, event: EventIssueSkipped, message: db.Text("fiscal provider disabled by policy")}
	} else {
		res, perr := s.Provider.IssueInvoice(ctx, InvoiceRequest{
			SaleID:        db.UUIDString(sale.ID),
			ReceiptNumber: sale.ReceiptNumber,
			StoreID:       db.UUIDString(sale.StoreID),
			CustomerRef:   sale.CustomerRef.String,
			TotalPayable:  sale.TotalPayable,
		})
		result = s.issued(res, perr, EventIssueSucceeded, EventIssueFailed)
	}
	return s.settle(ctx, func(q dbgen.Querier) (dbgen.FiscalDocument, error) {
		return ensure(ctx, q, dbgen.InsertFiscalDocumentParams{
			SaleID:           sale.ID,
			DocumentType:     DocumentInvoice,
			Status:           StatusFailed,
			ProviderCode:     s.providerCode(),
			RequestReference: db.Text(sale.ReceiptNumber),
		})
	}, result)
}

// IssueCreditNote issues the credit note of a return against an
// invoice-required sale. Nothing is recorded while the provider is disabled.
func (s *Service) IssueCreditNote(ctx context.Context, returnID pgtype.UUID) (*Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("fiscal.Service").Start(ctx, "FiscalService.IssueCreditNote")
	defer span.End()
	span.SetAttributes(attribute.String("sale_return.id", db.UUIDString(returnID)))

	var (
		ret      dbgen.SaleReturn
		sale     dbgen.Sale
		existing *dbgen.FiscalDocument
	)
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		ret, err = q.GetSaleReturn(ctx, returnID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("return not found")
			}
			return common.Internal("unable to load return", err)
		}
		sale, err = q.GetSale(ctx, ret.SaleID)
		if err != nil {
			return common.Internal("unable to load sale", err)
		}
		doc, err := q.GetFiscalDocumentForReturn(ctx, dbgen.GetFiscalDocumentForReturnParams{SaleReturnID: returnID, DocumentType: DocumentCreditNote})
		if err == nil {
			existing = &doc
			return nil
		}
		if !db.IsNotFound(err) {
			return common.Internal("unable to load fiscal document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sale.InvoiceRequired || !s.Enabled || s.Provider == nil {
		return nil, nil
	}
	if existing != nil && existing.Status != StatusFailed {
		out := NewDocument(*existing, nil)
		return &out, nil
	}
	res, perr := s.Provider.IssueCreditNote(ctx, CreditNoteRequest{
		SaleReturnID:    db.UUIDString(ret.ID),
		SaleID:          db.UUIDString(sale.ID),
		ReturnReference: ret.ReturnReference,
		ReceiptNumber:   sale.ReceiptNumber,
		StoreID:         db.UUIDString(sale.StoreID),
		CustomerRef:     sale.CustomerRef.String,
		TotalGross:      ret.TotalGross,
	})
	return s.settle(ctx, func(q dbgen.Querier) (dbgen.FiscalDocument, error) {
		return ensure(ctx, q, dbgen.InsertFiscalDocumentParams{
			SaleID:           sale.ID,
			SaleReturnID:     ret.ID,
			DocumentType:     DocumentCreditNote,
			Status:           StatusFailed,
			ProviderCode:     s.providerCode(),
			RequestReference: db.Text(ret.ReturnReference),
		})
	}, s.issued(res, perr, EventCreditNoteSucceeded, EventCreditNoteFailed))
}

// Cancel voids an issued invoice at the provider.
func (s *Service) Cancel(ctx context.Context, documentID, reason string) (*Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := db.ParseUUID(documentID)
	if err != nil {
		return nil, common.NotFound("fiscal document not found")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.Validation("reason is required")
	}
	var doc dbgen.FiscalDocument
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		doc, err = q.GetFiscalDocument(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("fiscal document not found")
			}
			return common.Internal("unable to load fiscal document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != DocumentInvoice {
		return nil, common.Validation("only invoices can be cancelled")
	}
	if !doc.ExternalDocumentID.Valid || strings.TrimSpace(doc.ExternalDocumentID.String) == "" {
		return nil, common.Validation("cannot cancel fiscal document without externalDocumentId")
	}
	if doc.Status != StatusIssued {
		return nil, common.Conflict("fiscal document is %s and cannot be cancelled", doc.Status)
	}
	if !s.Enabled || s.Provider == nil {
		return nil, common.Conflict("fiscal provider is not configured")
	}

	res, perr := s.Provider.CancelInvoice(ctx, CancelRequest{
		DocumentID:         documentID,
		ExternalDocumentID: doc.ExternalDocumentID.String,
		Reason:             reason,
	})
	result := outcome{status: StatusCancelled, event: EventCancelSucceeded, external: doc.ExternalDocumentID, issuedAt: doc.IssuedAt}
	switch {
	case perr != nil:
		result = outcome{status: StatusFailed, event: EventCancelFailed, external: doc.ExternalDocumentID, issuedAt: doc.IssuedAt,
			message: db.Text("provider exception: " + errorKind(perr))}
	case !res.Success:
		result = outcome{status: StatusFailed, event: EventCancelFailed, external: doc.ExternalDocumentID, issuedAt: doc.IssuedAt,
			message: normalizeMessage(res.Message)}
	default:
		result.message = normalizeMessage(res.Message)
		result.cancelledAt = pgtype.Timestamptz{Time: s.now(), Valid: true}
	}
	out, err := s.settle(ctx, func(q dbgen.Querier) (dbgen.FiscalDocument, error) {
		return q.GetFiscalDocument(ctx, id)
	}, result)
	if err != nil {
		return nil, err
	}
	if result.status == StatusFailed {
		return out, common.NewAppError(common.CodeConflict, "fiscal provider refused the cancellation", http.StatusConflict, ErrIssueFailed)
	}
	return out, nil
}

// Get returns a document with its event trail.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if err := s.ready(); err != nil {
		return Document{}, err
	}
	id, err := db.ParseUUID(documentID)
	if err != nil {
		return Document{}, common.NotFound("fiscal document not found")
	}
	var out Document
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		doc, err := q.GetFiscalDocument(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("fiscal document not found")
			}
			return common.Internal("unable to load fiscal document", err)
		}
		events, err := q.ListFiscalEvents(ctx, id)
		if err != nil {
			return common.Internal("unable to load fiscal events", err)
		}
		out = NewDocument(doc, events)
		return nil
	})
	return out, err
}

func ensure(ctx context.Context, q dbgen.Querier, params dbgen.InsertFiscalDocumentParams) (dbgen.FiscalDocument, error) {
	var (
		doc dbgen.FiscalDocument
		err error
	)
	if params.SaleReturnID.Valid {
		doc, err = q.GetFiscalDocumentForReturn(ctx, dbgen.GetFiscalDocumentForReturnParams{SaleReturnID: params.SaleReturnID, DocumentType: params.DocumentType})
	} else {
		doc, err = q.GetFiscalDocumentForSale(ctx, dbgen.GetFiscalDocumentForSaleParams{SaleID: params.SaleID, DocumentType: params.DocumentType})
	}
	if err == nil || !db.IsNotFound(err) {
		return doc, err
	}
	return q.InsertFiscalDocument(ctx, params)
}

// settle writes result onto the document load returns and appends its event.
func (s *Service) settle(ctx context.Context, load func(dbgen.Querier) (dbgen.FiscalDocument, error), result outcome) (*Document, error) {
	var out Document
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		doc, err := load(q)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return common.Conflict("fiscal document is being recorded by another worker")
			}
			return common.Internal("unable to prepare fiscal document", err)
		}
		code := doc.ProviderCode
		if result.status != StatusCancelled && result.event != EventCancelFailed {
			code = s.providerCode()
		}
		doc, err = q.UpdateFiscalDocument(ctx, dbgen.UpdateFiscalDocumentParams{
			ID:                 doc.ID,
			Status:             result.status,
			ProviderCode:       code,
			ExternalDocumentID: result.external,
			Message:            result.message,
			IssuedAt:           result.issuedAt,
			CancelledAt:        result.cancelledAt,
		})
		if err != nil {
			return common.Internal("unable to update fiscal document", err)
		}
		if err := q.InsertFiscalEvent(ctx, dbgen.InsertFiscalEventParams{FiscalDocumentID: doc.ID, EventType: result.event, Message: result.message}); err != nil {
			return common.Internal("unable to record fiscal event", err)
		}
		events, err := q.ListFiscalEvents(ctx, doc.ID)
		if err != nil {
			return common.Internal("unable to load fiscal events", err)
		}
		out = NewDocument(doc, events)
		return nil
	})
	if err != nil {
		return nil, err
	}
	obs.IncFiscalDocument(out.DocumentType, out.Status)
	log := s.Logger.With().Str("document_id", out.ID).Str("document_type", out.DocumentType).Str("status", out.Status).Logger()
	if out.Status == StatusFailed {
		log.Warn().Msg("fiscal document failed")
		if result.event != EventCancelFailed {
			return &out, ErrIssueFailed
		}
		return &out, nil
	}
	log.Info().Msg("fiscal document recorded")
	return &out, nil
}
