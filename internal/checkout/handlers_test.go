package checkout_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/receipt"
)

func TestCheckoutHandlerReplaysStoredBody(t *testing.T) {
	e := newEnv(t)
	c := e.pricedCart(t)

	var printed bytes.Buffer
	bus := &events.Bus{}
	bus.Subscribe(events.TopicSaleCheckedOut, &receipt.Printer{Svc: &receipt.Service{DB: e.store}, Out: &printed})
	e.svc.Bus = bus

	h := &checkout.Handler{Svc: e.svc}
	r := chi.NewRouter()
	r.Post("/sales/checkout", h.Checkout)

	body := `{"cartId":"` + c.ID + `","cashierId":"` + e.cashier + `","terminalId":"` + db.UUIDString(e.retail.Terminal.ID) +
		`","payments":[{"tenderType":"CASH","amount":"50"}]}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/checkout", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), common.CodeValidation)

	send := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales/checkout", strings.NewReader(payload))
		req.Header.Set(common.IdempotencyHeader, "till-42")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send(body)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get(checkout.ReplayHeader))
	require.Contains(t, first.Body.String(), `"changeAmount":"21.90"`)
	require.Contains(t, printed.String(), "RCPT-POS-01-00000001")

	// Key order and whitespace do not change the fingerprint.
	reordered := `{ "payments":[{"amount":"50","tenderType":"CASH"}], "terminalId":"` + db.UUIDString(e.retail.Terminal.ID) +
		`", "cashierId":"` + e.cashier + `", "cartId":"` + c.ID + `" }`
	second := send(reordered)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get(checkout.ReplayHeader))
	require.Equal(t, first.Body.String(), second.Body.String())

	third := send(strings.Replace(body, `"50"`, `"60"`, 1))
	require.Equal(t, http.StatusConflict, third.Code)

	bad := send(`{"cartId":`)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCheckoutHandlerWithoutService(t *testing.T) {
	h := &checkout.Handler{}
	rec := httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/sales/checkout", nil).WithContext(context.Background()))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
