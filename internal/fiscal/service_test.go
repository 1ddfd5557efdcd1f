package fiscal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/fiscal"
	"github.com/noah-isme/backend-pos/internal/payment"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/returns"
)

var clock = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

type fixture struct {
	store  *memdb.Store
	retail memdb.Retail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memdb.New()}
	f.retail = memdb.SeedRetail(f.store, memdb.RetailOptions{})
	f.store.Seed(func(seed *memdb.Seeder) {
		seed.Lot(dbgen.InventoryLot{StoreID: f.retail.Store.ID, ProductID: f.retail.ProductA.ID, LotCode: "A-1"}, decimal.NewFromInt(50))
	})
	return f
}

// sell checks out one SKU-A (11.00 gross) and returns the committed sale.
func (f *fixture) sell(t *testing.T, invoice bool) checkout.Output {
	t.Helper()
	ctx := context.Background()
	carts := &cart.Service{DB: f.store, Now: clock}
	cashier := uuid.NewString()
	c, err := carts.Create(ctx, cart.CreateInput{CashierID: cashier, StoreID: db.UUIDString(f.retail.Store.ID), TerminalID: db.UUIDString(f.retail.Terminal.ID)})
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	res, err := (&checkout.Service{DB: f.store, Now: clock}).Checkout(ctx, uuid.NewString(), "fp", checkout.Input{
		CartID:          c.ID,
		CashierID:       cashier,
		TerminalID:      db.UUIDString(f.retail.Terminal.ID),
		Payments:        []payment.AllocationInput{{TenderType: "CARD", Amount: decimal.RequireFromString("11.00")}},
		InvoiceRequired: invoice,
	})
	require.NoError(t, err)
	var out checkout.Output
	require.NoError(t, json.Unmarshal(res.Body, &out))
	return out
}

func uid(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	id, err := db.ParseUUID(s)
	require.NoError(t, err)
	return id
}

type failingProvider struct {
	fiscal.StubProvider
	err error
	res *fiscal.Result
}

func (p failingProvider) Code() string { return "FLAKY" }

func (p failingProvider) IssueInvoice(ctx context.Context, req fiscal.InvoiceRequest) (fiscal.Result, error) {
	if p.res != nil {
		return *p.res, nil
	}
	return fiscal.Result{}, p.err
}

func (p failingProvider) CancelInvoice(context.Context, fiscal.CancelRequest) (fiscal.Result, error) {
	return fiscal.Result{}, p.err
}

func TestIssueInvoiceIsRecordedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Provider: fiscal.StubProvider{}, Enabled: true, Now: clock}

	doc, err := svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.NoError(t, err)
	require.Equal(t, fiscal.StatusIssued, doc.Status)
	require.Equal(t, "STUB", doc.ProviderCode)
	require.Equal(t, "INV-"+sale.SaleID, *doc.ExternalDocumentID)
	require.Equal(t, sale.ReceiptNumber, *doc.RequestReference)
	require.NotNil(t, doc.IssuedAt)

	again, err := svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.NoError(t, err)
	require.Equal(t, doc.ID, again.ID)

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	require.Equal(t, fiscal.EventIssueSucceeded, got.Events[0].EventType)

	plain := f.sell(t, false)
	none, err := svc.IssueInvoice(ctx, uid(t, plain.SaleID))
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestIssueInvoiceDisabledIsSkipped(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Now: clock}

	doc, err := svc.IssueInvoice(context.Background(), uid(t, sale.SaleID))
	require.NoError(t, err)
	require.Equal(t, fiscal.StatusSkipped, doc.Status)
	require.Equal(t, "DISABLED", doc.ProviderCode)
	require.Equal(t, "fiscal provider disabled by policy", *doc.Message)
	require.Nil(t, doc.ExternalDocumentID)
}

func TestIssueInvoiceFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Provider: failingProvider{err: context.DeadlineExceeded}, Enabled: true, Now: clock}

	doc, err := svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.ErrorIs(t, err, fiscal.ErrIssueFailed)
	require.Equal(t, fiscal.StatusFailed, doc.Status)
	require.Equal(t, "provider exception: timeout", *doc.Message)

	svc.Provider = failingProvider{res: &fiscal.Result{Success: false, Message: "  tax id rejected "}}
	doc, err = svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.ErrorIs(t, err, fiscal.ErrIssueFailed)
	require.Equal(t, "tax id rejected", *doc.Message)

	svc.Provider = fiscal.StubProvider{}
	doc, err = svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.NoError(t, err)
	require.Equal(t, fiscal.StatusIssued, doc.Status)
	require.Equal(t, "stub invoice issued", *doc.Message)
	require.Len(t, doc.Events, 3)
	require.Equal(t, fiscal.EventIssueFailed, doc.Events[0].EventType)
	require.Equal(t, fiscal.EventIssueSucceeded, doc.Events[2].EventType)
}

func TestCancelInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Provider: fiscal.StubProvider{}, Enabled: true, Now: clock}
	doc, err := svc.IssueInvoice(ctx, uid(t, sale.SaleID))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, doc.ID, " ")
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	cancelled, err := svc.Cancel(ctx, doc.ID, "customer dispute")
	require.NoError(t, err)
	require.Equal(t, fiscal.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, *doc.ExternalDocumentID, *cancelled.ExternalDocumentID)

	_, err = svc.Cancel(ctx, doc.ID, "again")
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	_, err = svc.Cancel(ctx, uuid.NewString(), "missing")
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))

	other := f.sell(t, true)
	issued, err := svc.IssueInvoice(ctx, uid(t, other.SaleID))
	require.NoError(t, err)
	svc.Provider = failingProvider{err: errors.New("boom")}
	failed, err := svc.Cancel(ctx, issued.ID, "dispute")
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	require.Equal(t, fiscal.StatusFailed, failed.Status)
	require.Equal(t, fiscal.EventCancelFailed, failed.Events[len(failed.Events)-1].EventType)
}

func TestCreditNoteThroughInlineDispatcher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Provider: fiscal.StubProvider{}, Enabled: true, Now: clock}
	dispatcher := &fiscal.Dispatcher{Svc: svc}

	var lines []dbgen.SaleLine
	require.NoError(t, f.store.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		lines, err = q.ListSaleLines(ctx, uid(t, sale.SaleID))
		return err
	}))
	rets := &returns.Service{DB: f.store, Fiscal: dispatcher, Now: clock}
	res, err := rets.Return(ctx, sale.SaleID, "r-1", "fp", returns.Input{
		Reason: "faulty",
		Lines:  []returns.LineInput{{SaleLineID: db.UUIDString(lines[0].ID), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	var ret returns.Output
	require.NoError(t, json.Unmarshal(res.Body, &ret))

	doc, err := svc.IssueCreditNote(ctx, uid(t, ret.ReturnID))
	require.NoError(t, err)
	require.Equal(t, fiscal.DocumentCreditNote, doc.DocumentType)
	require.Equal(t, fiscal.StatusIssued, doc.Status)
	require.Equal(t, "CN-"+ret.ReturnID, *doc.ExternalDocumentID)
	require.Equal(t, ret.ReturnReference, *doc.RequestReference)
	require.Equal(t, ret.ReturnID, *doc.SaleReturnID)
}

type captureQueue struct{ tasks []queue.Task }

func (c *captureQueue) Enqueue(_ context.Context, t queue.Task) error {
	c.tasks = append(c.tasks, t)
	return nil
}

func TestDispatcherEnqueuesAndHandlesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, true)
	svc := &fiscal.Service{DB: f.store, Provider: fiscal.StubProvider{}, Enabled: true, Now: clock}
	q := &captureQueue{}
	dispatcher := &fiscal.Dispatcher{Queue: q, Svc: svc}

	require.NoError(t, dispatcher.DispatchInvoice(ctx, uid(t, sale.SaleID)))
	require.Len(t, q.tasks, 1)
	require.Equal(t, fiscal.TaskInvoice, q.tasks[0].Kind)
	require.Equal(t, sale.SaleID, q.tasks[0].IdempotencyKey)
	require.Equal(t, 5, q.tasks[0].MaxAttempts)

	mux := queue.NewMux(zerolog.Nop())
	dispatcher.Register(mux)
	require.NoError(t, mux.ProcessTask(ctx, asynq.NewTask(fiscal.TaskInvoice, q.tasks[0].Payload)))
	require.Error(t, mux.ProcessTask(ctx, asynq.NewTask(fiscal.TaskInvoice, []byte(`{"saleId":"nope"}`))))

	var docID string
	require.NoError(t, f.store.InTx(ctx, func(qr dbgen.Querier) error {
		d, err := qr.GetFiscalDocumentForSale(ctx, dbgen.GetFiscalDocumentForSaleParams{SaleID: uid(t, sale.SaleID), DocumentType: fiscal.DocumentInvoice})
		docID = db.UUIDString(d.ID)
		return err
	}))

	r := chi.NewRouter()
	h := &fiscal.Handler{Svc: svc}
	r.Get("/fiscal/documents/{id}", h.Get)
	r.Post("/fiscal/documents/{id}/cancel", h.Cancel)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fiscal/documents/"+docID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ISSUED"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fiscal/documents/"+docID+"/cancel", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fiscal/documents/"+docID+"/cancel", strings.NewReader(`{"reason":"void"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/invoices":
			var req fiscal.InvoiceRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(fiscal.Result{Success: true, ExternalDocumentID: "EXT-" + req.ReceiptNumber, Message: "ok"})
		case "/credit-notes":
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	client := resilience.NewHTTPClient("fiscal", time.Second, 1, nil)
	p := &fiscal.HTTPProvider{BaseURL: srv.URL + "/", Client: client}
	ctx := context.Background()

	res, err := p.IssueInvoice(ctx, fiscal.InvoiceRequest{ReceiptNumber: "RCPT-1"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "EXT-RCPT-1", res.ExternalDocumentID)

	res, err = p.IssueCreditNote(ctx, fiscal.CreditNoteRequest{})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Message, "422")

	_, err = p.CancelInvoice(ctx, fiscal.CancelRequest{ExternalDocumentID: "EXT-1"})
	require.Error(t, err)
}
