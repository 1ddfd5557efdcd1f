package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/payment"
)

func recordPayment(t *testing.T, store *memdb.Store) dbgen.Payment {
	t.Helper()
	b, err := payment.Settle([]payment.AllocationInput{{TenderType: "CASH", Amount: d("50.00")}}, d("38.50"))
	require.NoError(t, err)
	var p dbgen.Payment
	err = store.InTx(context.Background(), func(q dbgen.Querier) error {
		var err error
		p, _, err = payment.Record(context.Background(), q, db.NewUUID(), b, time.Now())
		return err
	})
	require.NoError(t, err)
	return p
}

func TestRecordAndGet(t *testing.T) {
	store := memdb.New()
	p := recordPayment(t, store)
	svc := &payment.Service{DB: store}

	out, err := svc.Get(context.Background(), db.UUIDString(p.ID))
	require.NoError(t, err)
	require.Equal(t, payment.StatusCaptured, out.Status)
	require.Equal(t, "11.50", out.ChangeAmount)
	require.Len(t, out.Allocations, 1)
	require.Equal(t, "38.50", out.Allocations[0].AppliedAmount)
	require.Len(t, out.Transitions, 1)
	require.Nil(t, out.Transitions[0].FromStatus)

	_, err = svc.Get(context.Background(), uuid.NewString())
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))
	_, err = svc.Get(context.Background(), "nope")
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestTransitionRefundOnce(t *testing.T) {
	store := memdb.New()
	p := recordPayment(t, store)
	bus := &events.Bus{}
	var seen []string
	bus.Subscribe(events.TopicPaymentTransitioned, events.NotifierFunc(func(_ context.Context, ev dbgen.DomainEvent) error {
		seen = append(seen, string(ev.Payload))
		return nil
	}))
	svc := &payment.Service{DB: store, Bus: bus}
	ctx := context.Background()

	out, err := svc.Transition(ctx, db.UUIDString(p.ID), payment.TransitionInput{Action: "refund", Note: "damaged"})
	require.NoError(t, err)
	require.Equal(t, payment.StatusRefunded, out.Status)
	require.Len(t, out.Transitions, 2)
	require.Equal(t, payment.StatusCaptured, *out.Transitions[1].FromStatus)
	require.Len(t, seen, 1)
	require.Contains(t, seen[0], `"to":"REFUNDED"`)

	_, err = svc.Transition(ctx, db.UUIDString(p.ID), payment.TransitionInput{Action: "REFUND"})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	_, err = svc.Transition(ctx, db.UUIDString(p.ID), payment.TransitionInput{})
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestPaymentHandlers(t *testing.T) {
	store := memdb.New()
	p := recordPayment(t, store)
	h := &payment.Handler{Svc: &payment.Service{DB: store}}
	r := chi.NewRouter()
	r.Get("/payments/{id}", h.Get)
	r.Post("/payments/{id}/transitions", h.Transition)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/"+db.UUIDString(p.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"CAPTURED"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/"+db.UUIDString(p.ID)+"/transitions", strings.NewReader(`{"action":"VOID"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), common.CodeConflict)

	var nilHandler payment.Handler
	rec = httptest.NewRecorder()
	nilHandler.Get(rec, httptest.NewRequest(http.MethodGet, "/payments/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
