package checkout_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/payment"
)

type fakeFiscal struct {
	mu    sync.Mutex
	sales []pgtype.UUID
}

func (f *fakeFiscal) DispatchInvoice(_ context.Context, saleID pgtype.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales = append(f.sales, saleID)
	return nil
}

type env struct {
	store   *memdb.Store
	retail  memdb.Retail
	carts   *cart.Service
	svc     *checkout.Service
	fiscal  *fakeFiscal
	cashier string
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newEnv(t *testing.T) *env {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := &env{store: memdb.New(), fiscal: &fakeFiscal{}, cashier: uuid.NewString()}
	e.retail = memdb.SeedRetail(e.store, memdb.RetailOptions{CashRounding: "NEAREST", CashStep: "0.10"})
	e.store.Seed(func(seed *memdb.Seeder) {
		seed.Lot(dbgen.InventoryLot{StoreID: e.retail.Store.ID, ProductID: e.retail.ProductA.ID, LotCode: "A-1"}, d("10"))
		seed.Lot(dbgen.InventoryLot{StoreID: e.retail.Store.ID, ProductID: e.retail.ProductB.ID, LotCode: "B-1"}, d("10"))
	})
	clock := func() time.Time { return now }
	bus := &events.Bus{}
	e.carts = &cart.Service{DB: e.store, Bus: bus, Now: clock}
	e.svc = &checkout.Service{DB: e.store, Bus: bus, Fiscal: e.fiscal, Now: clock}
	return e
}

// pricedCart holds SKU-A x2 (22.00) and SKU-B x1.1 (6.05): gross 28.05, cash payable 28.10.
func (e *env) pricedCart(t *testing.T) cart.Snapshot {
	t.Helper()
	ctx := context.Background()
	c, err := e.carts.Create(ctx, cart.CreateInput{
		CashierID:  e.cashier,
		StoreID:    db.UUIDString(e.retail.Store.ID),
		TerminalID: db.UUIDString(e.retail.Terminal.ID),
	})
	require.NoError(t, err)
	_, err = e.carts.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(e.retail.ProductA.ID), Quantity: d("2")})
	require.NoError(t, err)
	c, err = e.carts.AddLine(ctx, c.ID, cart.AddLineInput{ProductID: db.UUIDString(e.retail.ProductB.ID), Quantity: d("1.1")})
	require.NoError(t, err)
	require.Equal(t, "28.05", c.Totals.Gross)
	return c
}

func (e *env) input(c cart.Snapshot, pays ...payment.AllocationInput) checkout.Input {
	return checkout.Input{
		CartID:     c.ID,
		CashierID:  e.cashier,
		TerminalID: db.UUIDString(e.retail.Terminal.ID),
		Payments:   pays,
	}
}

func (e *env) onHand(t *testing.T, product pgtype.UUID) decimal.Decimal {
	t.Helper()
	total := decimal.Zero
	err := e.store.InTx(context.Background(), func(q dbgen.Querier) error {
		rows, err := q.LockLotBalancesForProduct(context.Background(), dbgen.LockLotBalancesForProductParams{StoreID: e.retail.Store.ID, ProductID: product})
		for _, r := range rows {
			total = total.Add(r.QuantityOnHand)
		}
		return err
	})
	require.NoError(t, err)
	return total
}

func decode(t *testing.T, body []byte) checkout.Output {
	t.Helper()
	var out checkout.Output
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCheckoutSettlesCashSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.pricedCart(t)

	in := e.input(c, payment.AllocationInput{TenderType: "cash", Amount: d("30.00")})
	in.InvoiceRequired = true
	res, err := e.svc.Checkout(ctx, "tok-1", "fp-1", in)
	require.NoError(t, err)
	require.False(t, res.Replayed)
	out := decode(t, res.Body)

	require.Equal(t, "RCPT-POS-01-00000001", out.ReceiptNumber)
	require.Equal(t, "28.05", out.Totals.Gross)
	require.Equal(t, "0.05", out.Totals.RoundingAdjustment)
	require.Equal(t, "28.10", out.Totals.Payable)
	require.Equal(t, "30.00", out.TotalAllocated)
	require.Equal(t, "1.90", out.ChangeAmount)
	require.True(t, out.Rounding.Applied)
	require.Len(t, out.Allocations, 1)
	require.Equal(t, "28.10", out.Allocations[0].AppliedAmount)

	got, err := e.carts.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusCheckedOut, got.Status)
	require.True(t, e.onHand(t, e.retail.ProductA.ID).Equal(d("8")))
	require.True(t, e.onHand(t, e.retail.ProductB.ID).Equal(d("8.9")))
	require.Len(t, e.fiscal.sales, 1)
	require.Equal(t, out.SaleID, db.UUIDString(e.fiscal.sales[0]))
}

func TestCheckoutReplayIsIdentical(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.pricedCart(t)
	in := e.input(c, payment.AllocationInput{TenderType: "CARD", Amount: d("28.05")})

	first, err := e.svc.Checkout(ctx, "tok-r", "fp", in)
	require.NoError(t, err)
	second, err := e.svc.Checkout(ctx, "tok-r", "fp", in)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Body, second.Body)
	require.Equal(t, "28.05", decode(t, first.Body).Totals.Payable)

	require.True(t, e.onHand(t, e.retail.ProductA.ID).Equal(d("8")))
	require.Empty(t, e.fiscal.sales, "no invoice requested")

	_, err = e.svc.Checkout(ctx, "tok-r", "other-fp", in)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	_, err = e.svc.Checkout(ctx, "tok-new", "fp", in)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.pricedCart(t)
	_, err := e.carts.UpdateLine(ctx, c.ID, c.Lines[1].ID, cart.UpdateLineInput{Quantity: func() *decimal.Decimal { v := d("11"); return &v }()})
	require.NoError(t, err)

	_, err = e.svc.Checkout(ctx, "tok-s", "fp", e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("100.00")}))
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	got, err := e.carts.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusPriced, got.Status)
	require.True(t, e.onHand(t, e.retail.ProductA.ID).Equal(d("10")))
	require.Empty(t, e.fiscal.sales)

	_, err = e.carts.UpdateLine(ctx, c.ID, c.Lines[1].ID, cart.UpdateLineInput{Quantity: func() *decimal.Decimal { v := d("1"); return &v }()})
	require.NoError(t, err)
	res, err := e.svc.Checkout(ctx, "tok-s", "fp", e.input(c, payment.AllocationInput{TenderType: "CARD", Amount: d("27.50")}))
	require.NoError(t, err)
	require.Equal(t, "RCPT-POS-01-00000001", decode(t, res.Body).ReceiptNumber)
}

func TestCheckoutValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.pricedCart(t)

	_, err := e.svc.Checkout(ctx, "", "fp", e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("30")}))
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = e.svc.Checkout(ctx, "t1", "fp", e.input(c))
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	_, err = e.svc.Checkout(ctx, "t2", "fp", e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("20.00")}))
	require.ErrorIs(t, err, payment.ErrUnderpaid)

	_, err = e.svc.Checkout(ctx, "t3", "fp", e.input(c, payment.AllocationInput{TenderType: "CARD", Amount: d("40.00")}))
	require.ErrorIs(t, err, payment.ErrChangeWithoutCash)

	in := e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("30")})
	in.CashierID = uuid.NewString()
	_, err = e.svc.Checkout(ctx, "t4", "fp", in)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	in = e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("30")})
	in.CartID = uuid.NewString()
	_, err = e.svc.Checkout(ctx, "t5", "fp", in)
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))

	in = e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("30")})
	in.AllowExpiredOverride = true
	_, err = e.svc.Checkout(ctx, "t6", "fp", in)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	e.svc.RequireFiscal = true
	in = e.input(c, payment.AllocationInput{TenderType: "CASH", Amount: d("30")})
	in.InvoiceRequired = true
	_, err = e.svc.Checkout(ctx, "t7", "fp", in)
	require.Equal(t, common.CodeConflict, common.CodeOf(err))

	got, err := e.carts.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, cart.StatusPriced, got.Status)
}

func TestConcurrentCheckoutsOfOneCart(t *testing.T) {
	e := newEnv(t)
	c := e.pricedCart(t)
	in := e.input(c, payment.AllocationInput{TenderType: "CARD", Amount: d("28.05")})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Checkout(context.Background(), uuid.NewString(), "fp", in)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.Equal(t, common.CodeConflict, common.CodeOf(err))
	}
	require.Equal(t, 1, ok)
	require.True(t, e.onHand(t, e.retail.ProductA.ID).Equal(d("8")))
}
