package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/inventory"
)

var saleDay = time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestPlanFollowsLotOrder(t *testing.T) {
	lots := []inventory.Lot{
		{ID: 3, Code: "EARLY", ExpiryDate: day(2026, 7, 1), OnHand: qty("2")},
		{ID: 1, Code: "LATE", ExpiryDate: day(2026, 9, 1), OnHand: qty("5")},
		{ID: 2, Code: "NOEXP", OnHand: qty("10")},
	}
	plan, err := inventory.Plan(lots, qty("4.5"), saleDay, false)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, int64(3), plan[0].LotID)
	require.Equal(t, "2", plan[0].Quantity.String())
	require.Equal(t, int64(1), plan[1].LotID)
	require.Equal(t, "2.5", plan[1].Quantity.String())
	require.Equal(t, 2, plan[1].Seq)
}

func TestPlanExpiredLots(t *testing.T) {
	lots := []inventory.Lot{
		{ID: 1, Code: "OLD", ExpiryDate: day(2026, 6, 14), OnHand: qty("5")},
		{ID: 2, Code: "TODAY", ExpiryDate: day(2026, 6, 15), OnHand: qty("1")},
	}
	_, err := inventory.Plan(lots, qty("3"), saleDay, false)
	require.ErrorIs(t, err, inventory.ErrInsufficientNonExpired)

	plan, err := inventory.Plan(lots, qty("1"), saleDay, false)
	require.NoError(t, err)
	require.Equal(t, int64(2), plan[0].LotID)

	plan, err = inventory.Plan(lots, qty("3"), saleDay, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), plan[0].LotID)

	_, err = inventory.Plan(lots, qty("7"), saleDay, true)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestPlanReturnSkipsReturnedPortions(t *testing.T) {
	history := []dbgen.ListMovementLotsBySaleLineRow{
		{MovementType: inventory.MovementSale, LotID: 7, Quantity: qty("2"), Seq: 1},
		{MovementType: inventory.MovementSale, LotID: 9, Quantity: qty("3"), Seq: 2},
		{MovementType: inventory.MovementReturn, LotID: 7, Quantity: qty("1.5"), Seq: 1},
	}
	plan, err := inventory.PlanReturn(history, qty("2"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, int64(7), plan[0].LotID)
	require.Equal(t, "0.5", plan[0].Quantity.String())
	require.Equal(t, int64(9), plan[1].LotID)
	require.Equal(t, "1.5", plan[1].Quantity.String())

	_, err = inventory.PlanReturn(history, qty("4"))
	require.ErrorIs(t, err, inventory.ErrReturnExceedsSold)
}

func seedLots(t *testing.T) (*memdb.Store, memdb.Retail) {
	t.Helper()
	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	store.Seed(func(seed *memdb.Seeder) {
		seed.Lot(dbgen.InventoryLot{StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, LotCode: "A-NOEXP"}, qty("10"))
		seed.Lot(dbgen.InventoryLot{StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, LotCode: "A-JUL",
			ExpiryDate: pgtype.Date{Time: *day(2026, 7, 1), Valid: true}}, qty("3"))
	})
	return store, retail
}

func TestAllocateSaleAndCreditReturn(t *testing.T) {
	store, retail := seedLots(t)
	ctx := context.Background()
	saleLine := db.NewUUID()

	var plan []inventory.Allocation
	err := store.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		plan, err = inventory.AllocateSale(ctx, q, inventory.SaleRequest{
			StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, SaleLineID: saleLine,
			Sku: "SKU-A", Quantity: qty("5"), Reference: "RCPT-POS-01-00000001", SaleDay: saleDay,
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, "A-JUL", plan[0].LotCode)
	require.Equal(t, "3", plan[0].Quantity.String())
	require.Equal(t, "A-NOEXP", plan[1].LotCode)

	balances := lotBalances(t, store, retail)
	require.Equal(t, "0", balances["A-JUL"])
	require.Equal(t, "8", balances["A-NOEXP"])

	err = store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := inventory.CreditReturn(ctx, q, inventory.ReturnRequest{
			StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, SaleLineID: saleLine,
			Quantity: qty("4"), Reference: "RET-1",
		})
		return err
	})
	require.NoError(t, err)
	balances = lotBalances(t, store, retail)
	require.Equal(t, "3", balances["A-JUL"])
	require.Equal(t, "9", balances["A-NOEXP"])

	err = store.InTx(ctx, func(q dbgen.Querier) error {
		_, err := inventory.CreditReturn(ctx, q, inventory.ReturnRequest{
			StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, SaleLineID: saleLine,
			Quantity: qty("2"), Reference: "RET-2",
		})
		return err
	})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
}

func TestAllocateSaleInsufficientRollsBack(t *testing.T) {
	store, retail := seedLots(t)
	ctx := context.Background()
	err := store.InTx(ctx, func(q dbgen.Querier) error {
		if _, err := inventory.AllocateSale(ctx, q, inventory.SaleRequest{
			StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, SaleLineID: db.NewUUID(),
			Sku: "SKU-A", Quantity: qty("2"), SaleDay: saleDay,
		}); err != nil {
			return err
		}
		_, err := inventory.AllocateSale(ctx, q, inventory.SaleRequest{
			StoreID: retail.Store.ID, ProductID: retail.ProductA.ID, SaleLineID: db.NewUUID(),
			Sku: "SKU-A", Quantity: qty("12"), SaleDay: saleDay,
		})
		return err
	})
	require.Equal(t, common.CodeConflict, common.CodeOf(err))
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	balances := lotBalances(t, store, retail)
	require.Equal(t, "3", balances["A-JUL"])
	require.Equal(t, "10", balances["A-NOEXP"])
}

func lotBalances(t *testing.T, store *memdb.Store, retail memdb.Retail) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := store.InTx(context.Background(), func(q dbgen.Querier) error {
		rows, err := q.ListLotBalances(context.Background(), dbgen.ListLotBalancesParams{StoreID: retail.Store.ID, ProductID: retail.ProductA.ID})
		for _, r := range rows {
			out[r.LotCode] = r.QuantityOnHand.String()
		}
		return err
	})
	require.NoError(t, err)
	return out
}
