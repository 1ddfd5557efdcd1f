package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/events"
)

type fixture struct {
	store  *memdb.Store
	retail memdb.Retail
	svc    *cart.Service
	clock  *time.Time
	mu     sync.Mutex
	topics []string
}

func newFixture(t *testing.T, opts memdb.RetailOptions) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := &fixture{store: memdb.New(), clock: &now}
	f.retail = memdb.SeedRetail(f.store, opts)
	bus := &events.Bus{}
	capture := events.NotifierFunc(func(_ context.Context, ev dbgen.DomainEvent) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.topics = append(f.topics, ev.Topic)
		return nil
	})
	for _, topic := range []string{events.TopicCartCreated, events.TopicCartPriceOverride, events.TopicCartParked, events.TopicCartCancelled} {
		bus.Subscribe(topic, capture)
	}
	f.svc = &cart.Service{DB: f.store, Bus: bus, Now: func() time.Time { return *f.clock }}
	return f
}

func (f *fixture) open(t *testing.T) cart.Snapshot {
	t.Helper()
	out, err := f.svc.Create(context.Background(), cart.CreateInput{
		CashierID:  uuid.NewString(),
		StoreID:    db.UUIDString(f.retail.Store.ID),
		TerminalID: db.UUIDString(f.retail.Terminal.ID),
	})
	require.NoError(t, err)
	return out
}

func qty(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr[T any](v T) *T { return &v }

func TestCartLineMutationsReprice(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	c := f.open(t)
	require.Equal(t, cart.StatusOpen, c.Status)
	require.Equal(t, "0.00", c.Totals.Gross)

	c, err := f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: qty("2")})
	require.NoError(t, err)
	require.Equal(t, cart.StatusPriced, c.Status)
	require.Equal(t, "20.00", c.Totals.Subtotal)
	require.Equal(t, "2.00", c.Totals.Tax)
	require.Equal(t, "22.00", c.Totals.Gross)
	require.Equal(t, "22.00", c.Totals.Payable)

	productB := db.UUIDString(f.retail.ProductB.ID)
	c, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: productB, Quantity: qty("1"), LineKey: ptr("scan-b")})
	require.NoError(t, err)
	c, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: productB, Quantity: qty("3"), LineKey: ptr("scan-b")})
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	require.Equal(t, "3", c.Lines[1].Quantity)
	require.Equal(t, "35.00", c.Totals.Subtotal)
	require.Equal(t, "38.50", c.Totals.Gross)

	_, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: qty("1"), LineKey: ptr("scan-b")})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	c, err = f.svc.UpdateLine(ctx, c.ID, c.Lines[0].ID, cart.UpdateLineInput{Quantity: ptr(qty("1"))})
	require.NoError(t, err)
	require.Equal(t, "25.00", c.Totals.Subtotal)
	require.Equal(t, "27.50", c.Totals.Gross)

	c, err = f.svc.RemoveLine(ctx, c.ID, c.Lines[1].ID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, "11.00", c.Totals.Gross)

	c, err = f.svc.RemoveLine(ctx, c.ID, c.Lines[0].ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusOpen, c.Status)
	require.Empty(t, c.Lines)
	require.Equal(t, "0.00", c.Totals.Gross)

	_, err = f.svc.RemoveLine(ctx, c.ID, uuid.NewString())
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))
}

func TestCartLineValidation(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	c := f.open(t)
	productA := db.UUIDString(f.retail.ProductA.ID)

	cases := []cart.AddLineInput{
		{ProductID: productA, Quantity: qty("0")},
		{ProductID: productA, Quantity: qty("1.0005")},
		{ProductID: "not-a-uuid", Quantity: qty("1")},
		{ProductID: productA, Quantity: qty("1"), UnitPrice: ptr(qty("1.00")), PriceOverrideReason: ptr("manager")},
		{ProductID: db.UUIDString(f.retail.OpenItem.ID), Quantity: qty("1")},
		{ProductID: db.UUIDString(f.retail.OpenItem.ID), Quantity: qty("1"), UnitPrice: ptr(qty("2.50"))},
		{ProductID: db.UUIDString(f.retail.OpenItem.ID), Quantity: qty("1"), UnitPrice: ptr(qty("-1"))},
	}
	for _, in := range cases {
		_, err := f.svc.AddLine(ctx, c.ID, in)
		require.Equal(t, common.CodeValidation, common.CodeOf(err), "input %+v", in)
	}

	_, err := f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: uuid.NewString(), Quantity: qty("1")})
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))

	_, err = f.svc.AddLine(ctx, uuid.NewString(), cart.AddLineInput{ProductID: productA, Quantity: qty("1")})
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))

	_, err = f.svc.Create(ctx, cart.CreateInput{
		CashierID:  uuid.NewString(),
		StoreID:    db.UUIDString(f.retail.Store.ID),
		TerminalID: uuid.NewString(),
	})
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))
}

func TestCartOpenPriceOverride(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	c := f.open(t)

	c, err := f.svc.AddLine(ctx, c.ID, cart.AddLineInput{
		ProductID:           db.UUIDString(f.retail.OpenItem.ID),
		Quantity:            qty("2"),
		UnitPrice:           ptr(qty("2.499")),
		PriceOverrideReason: ptr(" deli weight "),
	})
	require.NoError(t, err)
	line := c.Lines[0]
	require.True(t, line.PriceOverridden)
	require.Equal(t, "2.50", line.UnitPrice)
	require.Equal(t, "deli weight", *line.OverrideReason)
	require.Equal(t, "5.00", line.GrossAmount)
	require.Equal(t, "0.00", line.TaxAmount)
	require.Contains(t, f.topics, events.TopicCartPriceOverride)

	c, err = f.svc.UpdateLine(ctx, c.ID, line.ID, cart.UpdateLineInput{UnitPrice: ptr(qty("3.00")), PriceOverrideReason: ptr("relabel")})
	require.NoError(t, err)
	require.Equal(t, "6.00", c.Totals.Gross)

	_, err = f.svc.UpdateLine(ctx, c.ID, line.ID, cart.UpdateLineInput{})
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestCartParkResumeAndExpiry(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	c := f.open(t)

	_, err := f.svc.Park(ctx, c.ID, cart.ParkInput{})
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: qty("1")})
	require.NoError(t, err)

	parked, err := f.svc.Park(ctx, c.ID, cart.ParkInput{Note: "customer forgot wallet"})
	require.NoError(t, err)
	require.Equal(t, cart.StatusParked, parked.Status)
	require.NotNil(t, parked.ParkedReference)
	require.True(t, strings.HasPrefix(*parked.ParkedReference, "PARK-"))
	require.Len(t, *parked.ParkedReference, 13)
	require.Equal(t, f.clock.Add(30*time.Minute), *parked.ParkedUntil)

	_, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductB.ID), Quantity: qty("1")})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	resumed, err := f.svc.Resume(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusOpen, resumed.Status)
	require.Nil(t, resumed.ParkedReference)
	require.Equal(t, "11.00", resumed.Totals.Gross)

	_, err = f.svc.Resume(ctx, c.ID)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	_, err = f.svc.Park(ctx, c.ID, cart.ParkInput{})
	require.NoError(t, err)
	*f.clock = f.clock.Add(31 * time.Minute)
	_, err = f.svc.Resume(ctx, c.ID)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusExpired, got.Status)

	_, err = f.svc.Cancel(ctx, c.ID)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
}

func TestExpireParkedSweep(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	for range 2 {
		c := f.open(t)
		_, err := f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: qty("1")})
		require.NoError(t, err)
		_, err = f.svc.Park(ctx, c.ID, cart.ParkInput{})
		require.NoError(t, err)
	}

	n, err := f.svc.ExpireParked(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	*f.clock = f.clock.Add(time.Hour)
	n, err = f.svc.ExpireParked(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestCartRecalculatePreviewsRounding(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{CashRounding: "NEAREST", CashStep: "0.10"})
	ctx := context.Background()
	c := f.open(t)
	c, err := f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductB.ID), Quantity: qty("1.1")})
	require.NoError(t, err)
	require.Equal(t, "6.05", c.Totals.Gross)

	out, err := f.svc.Recalculate(ctx, c.ID, cart.RecalculateInput{TenderType: "cash"})
	require.NoError(t, err)
	require.NotNil(t, out.RoundingPreview)
	require.True(t, out.RoundingPreview.Applied)
	require.Equal(t, "6.10", out.RoundingPreview.Rounded)
	require.Equal(t, "6.05", out.Totals.Payable)

	out, err = f.svc.Recalculate(ctx, c.ID, cart.RecalculateInput{})
	require.NoError(t, err)
	require.Nil(t, out.RoundingPreview)
}

func TestCartCancel(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	ctx := context.Background()
	c := f.open(t)

	out, err := f.svc.Cancel(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusCancelled, out.Status)
	require.Equal(t, []string{events.TopicCartCreated, events.TopicCartCancelled}, f.topics)

	_, err = f.svc.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(f.retail.ProductA.ID), Quantity: qty("1")})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	_, err = f.svc.Cancel(ctx, c.ID)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
}

func TestCartHandlers(t *testing.T) {
	f := newFixture(t, memdb.RetailOptions{})
	h := &cart.Handler{Svc: f.svc}
	r := chi.NewRouter()
	r.Post("/carts", h.Create)
	r.Get("/carts/{id}", h.Get)
	r.Post("/carts/{id}/lines", h.AddLine)
	r.Post("/carts/{id}/recalculate", h.Recalculate)

	body := `{"cashierId":"` + uuid.NewString() + `","storeId":"` + db.UUIDString(f.retail.Store.ID) +
		`","terminalId":"` + db.UUIDString(f.retail.Terminal.ID) + `"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"OPEN"`)

	created, err := f.svc.Get(context.Background(), extractID(t, rec.Body.String()))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	line := `{"productId":"` + db.UUIDString(f.retail.ProductA.ID) + `","quantity":"1.5"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+created.ID+"/lines", strings.NewReader(line)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"gross":"16.50"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+created.ID+"/recalculate", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/carts/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), common.CodeNotFound)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+created.ID+"/lines", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func extractID(t *testing.T, body string) string {
	t.Helper()
	const marker = `"id":"`
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0)
	rest := body[idx+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}
