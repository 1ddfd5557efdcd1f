package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/app"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/db"
)

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *common.ErrorBody `json:"error"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	var env envelope
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func newApp(t *testing.T) (*app.App, client) {
	t.Helper()
	cfg, err := config.LoadForTests(map[string]string{
		"STORAGE_DRIVER":      "memory",
		"DATABASE_URL":        "",
		"REDIS_URL":           "",
		"RATE_LIMIT_CHECKOUT": "2-M",
		"FISCAL_ENABLED":      "true",
	})
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NotNil(t, a.Demo)

	registry := prometheus.NewRegistry()
	handler, err := a.Router(app.RouterOptions{Registry: registry, Gatherer: registry})
	require.NoError(t, err)
	return a, client{t: t, handler: handler}
}

func TestCheckoutFlowThroughRouter(t *testing.T) {
	a, c := newApp(t)
	demo := a.Demo
	cashier := uuid.NewString()
	terminal := db.UUIDString(demo.Terminal.ID)
	headers := map[string]string{common.TerminalHeader: terminal, "X-Cashier-ID": cashier}

	rr, env := c.do(http.MethodPost, "/api/v1/carts", map[string]any{
		"cashierId":  cashier,
		"storeId":    db.UUIDString(demo.Store.ID),
		"terminalId": terminal,
	}, headers)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rr, _ = c.do(http.MethodPost, "/api/v1/carts/"+created.ID+"/lines", map[string]any{
		"productId": db.UUIDString(demo.ProductA.ID),
		"quantity":  "2",
	}, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := map[string]any{
		"cartId":          created.ID,
		"cashierId":       cashier,
		"terminalId":      terminal,
		"invoiceRequired": true,
		"payments":        []map[string]any{{"tenderType": "CASH", "amount": "25.00"}},
	}
	withKey := map[string]string{common.TerminalHeader: terminal, common.IdempotencyHeader: "till-1-0001"}

	rr, env = c.do(http.MethodPost, "/api/v1/sales/checkout", body, withKey)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var sale checkout.Output
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	require.Equal(t, "RCPT-POS-01-00000001", sale.ReceiptNumber)
	require.Equal(t, "22.00", sale.Totals.Payable)
	require.Equal(t, "3.00", sale.ChangeAmount)
	first := rr.Body.String()

	rr, _ = c.do(http.MethodPost, "/api/v1/sales/checkout", body, withKey)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "true", rr.Header().Get(checkout.ReplayHeader))
	require.Equal(t, first, rr.Body.String())

	rr, env = c.do(http.MethodPost, "/api/v1/sales/checkout", body, withKey)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "RATE_LIMITED", env.Error.Code)

	rr, env = c.do(http.MethodGet, "/api/v1/receipts/"+sale.ReceiptNumber, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, _ = c.do(http.MethodGet, "/api/v1/payments/"+sale.PaymentID, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Without a task client the invoice is issued inline by the stub provider.
	saleID, err := db.ParseUUID(sale.SaleID)
	require.NoError(t, err)
	doc, err := a.Fiscal.IssueInvoice(context.Background(), saleID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, "ISSUED", doc.Status)
}

func TestHealthAndMetrics(t *testing.T) {
	_, c := newApp(t)

	rr, _ := c.do(http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr, _ = c.do(http.MethodGet, "/health/live", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = c.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "pos_http_requests_total")
}

func TestBodyLimitAndUnknownCart(t *testing.T) {
	_, c := newApp(t)

	rr, env := c.do(http.MethodGet, "/api/v1/carts/"+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, common.CodeNotFound, env.Error.Code)

	huge := map[string]string{"pad": string(bytes.Repeat([]byte("x"), 2<<20))}
	rr, _ = c.do(http.MethodPost, "/api/v1/promotions/evaluate", huge, nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/pos?sslmode=disable", app.MigrateURL("postgres://u:p@db:5432/pos?sslmode=disable"))
	require.Equal(t, "pgx5://db/pos", app.MigrateURL("postgresql://db/pos"))
	require.Equal(t, "pgx5://db/pos", app.MigrateURL("pgx5://db/pos"))
}

func TestUnknownStorageDriver(t *testing.T) {
	cfg := &config.Config{StorageDriver: "sqlite"}
	_, err := app.New(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.Error(t, err)
}
