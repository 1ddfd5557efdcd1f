// Package inventory deducts sold quantities from store lots in expiry order
// and credits returns back to the lots they were taken from.
package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// Movement types recorded in inventory_movements.
const (
	MovementSale    = "SALE"
	MovementReturn  = "RETURN"
	MovementReceipt = "RECEIPT"
)

var (
	ErrInsufficientStock      = errors.New("insufficient lot stock")
	ErrInsufficientNonExpired = errors.New("insufficient non-expired lot stock")
	ErrReturnExceedsSold      = errors.New("return quantity exceeds allocated quantity")
)

// Queries is the lot surface the allocator needs. All calls must run inside the
// caller's transaction.
type Queries interface {
	LockLotBalancesForProduct(ctx context.Context, arg dbgen.LockLotBalancesForProductParams) ([]dbgen.LockLotBalancesForProductRow, error)
	LockLotBalance(ctx context.Context, lotID int64) (dbgen.InventoryLotBalance, error)
	SetLotBalance(ctx context.Context, arg dbgen.SetLotBalanceParams) error
	CreditLotBalance(ctx context.Context, arg dbgen.CreditLotBalanceParams) (dbgen.InventoryLotBalance, error)
	InsertInventoryMovement(ctx context.Context, arg dbgen.InsertInventoryMovementParams) (dbgen.InventoryMovement, error)
	InsertInventoryMovementLot(ctx context.Context, arg dbgen.InsertInventoryMovementLotParams) error
	ListMovementLotsBySaleLine(ctx context.Context, saleLineID pgtype.UUID) ([]dbgen.ListMovementLotsBySaleLineRow, error)
}

// Lot is a locked lot balance in allocation order.
type Lot struct {
	ID         int64
	Code       string
	ExpiryDate *time.Time
	OnHand     decimal.Decimal
}

// Allocation is the quantity taken from or credited to one lot.
type Allocation struct {
	LotID    int64
	LotCode  string
	Quantity decimal.Decimal
	Seq      int
}

// Expired reports whether the lot expired before the given day.
func (l Lot) Expired(day time.Time) bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(truncateDay(day))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Plan walks lots in order and takes min(remaining, onHand) from each until qty is covered.
// Lots expired before saleDay are skipped unless allowExpired is set.
func Plan(lots []Lot, qty decimal.Decimal, saleDay time.Time, allowExpired bool) ([]Allocation, error) {
	if !qty.IsPositive() {
		return nil, money.ErrNonPositiveQuantity
	}
	remaining := qty
	skippedExpired := false
	var out []Allocation
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		if !lot.OnHand.IsPositive() {
			continue
		}
		if !allowExpired && lot.Expired(saleDay) {
			skippedExpired = true
			continue
		}
		take := money.Min(remaining, lot.OnHand)
		out = append(out, Allocation{LotID: lot.ID, LotCode: lot.Code, Quantity: take, Seq: len(out) + 1})
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		if skippedExpired {
			return nil, ErrInsufficientNonExpired
		}
		return nil, ErrInsufficientStock
	}
	return out, nil
}

// SaleRequest describes one sale line to allocate.
type SaleRequest struct {
	StoreID      pgtype.UUID
	ProductID    pgtype.UUID
	SaleLineID   pgtype.UUID
	Sku          string
	Quantity     decimal.Decimal
	Reference    string
	SaleDay      time.Time
	AllowExpired bool
}

// AllocateSale locks the product's lots, deducts req.Quantity in expiry order and
// records one movement with a movement-lot row per touched lot.
func AllocateSale(ctx context.Context, q Queries, req SaleRequest) ([]Allocation, error) {
	rows, err := q.LockLotBalancesForProduct(ctx, dbgen.LockLotBalancesForProductParams{StoreID: req.StoreID, ProductID: req.ProductID})
	if err != nil {
		return nil, common.Internal("unable to lock lot balances", err)
	}
	lots := make([]Lot, 0, len(rows))
	for _, row := range rows {
		lots = append(lots, Lot{ID: row.LotID, Code: row.LotCode, ExpiryDate: datePtr(row.ExpiryDate), OnHand: row.QuantityOnHand})
	}
	plan, err := Plan(lots, req.Quantity, req.SaleDay, req.AllowExpired)
	if err != nil {
		obs.IncLotAllocation("sale", "insufficient")
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrInsufficientNonExpired) {
			return nil, common.NewAppError(common.CodeConflict,
				fmt.Sprintf("%s for %s (requested %s)", err.Error(), req.Sku, money.FormatQuantity(req.Quantity)),
				http.StatusConflict, err)
		}
		return nil, common.ValidationErr(err, "invalid allocation quantity")
	}
	onHand := make(map[int64]decimal.Decimal, len(lots))
	for _, lot := range lots {
		onHand[lot.ID] = lot.OnHand
	}
	for _, a := range plan {
		if err := q.SetLotBalance(ctx, dbgen.SetLotBalanceParams{LotID: a.LotID, QuantityOnHand: onHand[a.LotID].Sub(a.Quantity)}); err != nil {
			return nil, common.Internal("unable to update lot balance", err)
		}
	}
	if err := recordMovement(ctx, q, MovementSale, req.StoreID, req.ProductID, req.SaleLineID, req.Quantity.Neg(), req.Reference, plan); err != nil {
		return nil, err
	}
	obs.IncLotAllocation("sale", "ok")
	return plan, nil
}

// LockProducts takes the lot balance locks of every product in ascending product
// id order so concurrent checkouts over overlapping products never deadlock.
func LockProducts(ctx context.Context, q Queries, storeID pgtype.UUID, productIDs []pgtype.UUID) error {
	ids := slices.Clone(productIDs)
	slices.SortFunc(ids, func(a, b pgtype.UUID) int { return bytes.Compare(a.Bytes[:], b.Bytes[:]) })
	ids = slices.CompactFunc(ids, func(a, b pgtype.UUID) bool { return a.Bytes == b.Bytes })
	for _, id := range ids {
		if _, err := q.LockLotBalancesForProduct(ctx, dbgen.LockLotBalancesForProductParams{StoreID: storeID, ProductID: id}); err != nil {
			if db.IsLockConflict(err) {
				return common.Conflict("inventory is being updated by another checkout, retry")
			}
			return common.Internal("unable to lock lot balances", err)
		}
	}
	return nil
}

// ReturnRequest describes a quantity returned against a sale line.
type ReturnRequest struct {
	StoreID    pgtype.UUID
	ProductID  pgtype.UUID
	SaleLineID pgtype.UUID
	Quantity   decimal.Decimal
	Reference  string
}

// PlanReturn credits qty back to the lots of the original sale allocation, in
// allocation order, skipping what earlier returns already credited.
func PlanReturn(history []dbgen.ListMovementLotsBySaleLineRow, qty decimal.Decimal) ([]Allocation, error) {
	if !qty.IsPositive() {
		return nil, money.ErrNonPositiveQuantity
	}
	returned := map[int64]decimal.Decimal{}
	for _, row := range history {
		if row.MovementType == MovementReturn {
			returned[row.LotID] = returned[row.LotID].Add(row.Quantity)
		}
	}
	remaining := qty
	var out []Allocation
	for _, row := range history {
		if row.MovementType != MovementSale || !remaining.IsPositive() {
			continue
		}
		available := row.Quantity.Sub(returned[row.LotID])
		if !available.IsPositive() {
			continue
		}
		credit := money.Min(remaining, available)
		out = append(out, Allocation{LotID: row.LotID, Quantity: credit, Seq: len(out) + 1})
		remaining = remaining.Sub(credit)
	}
	if remaining.IsPositive() {
		return nil, ErrReturnExceedsSold
	}
	return out, nil
}

// CreditReturn reverses part of a sale line's allocation onto the exact lots it came from.
func CreditReturn(ctx context.Context, q Queries, req ReturnRequest) ([]Allocation, error) {
	history, err := q.ListMovementLotsBySaleLine(ctx, req.SaleLineID)
	if err != nil {
		return nil, common.Internal("unable to load lot history", err)
	}
	plan, err := PlanReturn(history, req.Quantity)
	if err != nil {
		obs.IncLotAllocation("return", "rejected")
		if errors.Is(err, ErrReturnExceedsSold) {
			return nil, common.NewAppError(common.CodeConflict, err.Error(), http.StatusConflict, err)
		}
		return nil, common.ValidationErr(err, "invalid return quantity")
	}
	for _, a := range plan {
		if _, err := q.LockLotBalance(ctx, a.LotID); err != nil {
			return nil, common.Internal("unable to lock lot balance", err)
		}
		if _, err := q.CreditLotBalance(ctx, dbgen.CreditLotBalanceParams{LotID: a.LotID, QuantityOnHand: a.Quantity}); err != nil {
			return nil, common.Internal("unable to credit lot balance", err)
		}
	}
	if err := recordMovement(ctx, q, MovementReturn, req.StoreID, req.ProductID, req.SaleLineID, req.Quantity, req.Reference, plan); err != nil {
		return nil, err
	}
	obs.IncLotAllocation("return", "ok")
	return plan, nil
}

func recordMovement(ctx context.Context, q Queries, kind string, storeID, productID, saleLineID pgtype.UUID, delta decimal.Decimal, ref string, plan []Allocation) error {
	mv, err := q.InsertInventoryMovement(ctx, dbgen.InsertInventoryMovementParams{
		StoreID:         storeID,
		ProductID:       productID,
		MovementType:    kind,
		QuantityDelta:   delta,
		ReferenceNumber: ref,
		SaleLineID:      saleLineID,
	})
	if err != nil {
		return common.Internal("unable to record inventory movement", err)
	}
	for _, a := range plan {
		if err := q.InsertInventoryMovementLot(ctx, dbgen.InsertInventoryMovementLotParams{
			MovementID: mv.ID,
			LotID:      a.LotID,
			Quantity:   a.Quantity,
			Seq:        int32(a.Seq),
		}); err != nil {
			return common.Internal("unable to record movement lot", err)
		}
	}
	return nil
}

func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := truncateDay(d.Time)
	return &t
}
