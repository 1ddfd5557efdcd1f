package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
)

const maxLotCodeLength = 80

// ReceiveLotInput is one lot in a receipt.
type ReceiveLotInput struct {
	LotCode    string          `json:"lotCode" validate:"required,max=80"`
	ExpiryDate *string         `json:"expiryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReceiveInput is the body of POST /inventory/lots/receive.
type ReceiveInput struct {
	StoreID   string            `json:"storeId" validate:"required,uuid"`
	ProductID string            `json:"productId" validate:"required,uuid"`
	Reference string            `json:"reference,omitempty" validate:"max=120"`
	Lots      []ReceiveLotInput `json:"lots" validate:"required,min=1,max=100,dive"`
}

// LotView is a lot balance as returned by the API.
type LotView struct {
	LotID          int64      `json:"lotId"`
	LotCode        string     `json:"lotCode"`
	ExpiryDate     *string    `json:"expiryDate"`
	ReceivedAt     *time.Time `json:"receivedAt,omitempty"`
	QuantityOnHand string     `json:"quantityOnHand"`
}

// LotsOutput lists lot balances in allocation order.
type LotsOutput struct {
	StoreID    string            `json:"storeId"`
	ProductID  string            `json:"productId"`
	Lots       []LotView         `json:"lots"`
	Pagination common.Pagination `json:"pagination"`
}

// OnHandView aggregates lot balances for one product.
type OnHandView struct {
	ProductID      string `json:"productId"`
	QuantityOnHand string `json:"quantityOnHand"`
	LotCount       int64  `json:"lotCount"`
}

// ReceiveOutput reports the credited lots.
type ReceiveOutput struct {
	StoreID   string    `json:"storeId"`
	ProductID string    `json:"productId"`
	Reference string    `json:"reference"`
	Lots      []LotView `json:"lots"`
}

// Service exposes lot reads and receipts.
type Service struct {
	DB     db.TxRunner
	Now    func() time.Time
	Logger zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Lots lists the lot balances of a product at a store in allocation order.
func (s *Service) Lots(ctx context.Context, storeID, productID string, page, perPage int) (LotsOutput, error) {
	if s == nil || s.DB == nil {
		return LotsOutput{}, common.Internal("inventory service not configured", nil)
	}
	sID, pID, err := parseStoreProduct(storeID, productID)
	if err != nil {
		return LotsOutput{}, err
	}
	var rows []dbgen.ListLotBalancesRow
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		if err := ensureStore(ctx, q, sID); err != nil {
			return err
		}
		var err error
		rows, err = q.ListLotBalances(ctx, dbgen.ListLotBalancesParams{StoreID: sID, ProductID: pID})
		if err != nil {
			return common.Internal("unable to list lots", err)
		}
		return nil
	})
	if err != nil {
		return LotsOutput{}, err
	}
	p := common.Pagination{Page: page, PerPage: perPage, TotalItems: len(rows)}
	start, end := p.Window()
	out := LotsOutput{StoreID: storeID, ProductID: productID, Lots: make([]LotView, 0, end-start), Pagination: p}
	for _, row := range rows[start:end] {
		received := row.ReceivedAt.Time
		out.Lots = append(out.Lots, LotView{
			LotID:          row.LotID,
			LotCode:        row.LotCode,
			ExpiryDate:     formatDate(row.ExpiryDate),
			ReceivedAt:     &received,
			QuantityOnHand: money.FormatQuantity(row.QuantityOnHand),
		})
	}
	return out, nil
}

// OnHand aggregates on-hand quantity per product at a store, optionally for one product.
func (s *Service) OnHand(ctx context.Context, storeID, productID string) ([]OnHandView, error) {
	if s == nil || s.DB == nil {
		return nil, common.Internal("inventory service not configured", nil)
	}
	sID, err := db.ParseUUID(storeID)
	if err != nil {
		return nil, common.ValidationErr(err, "invalid store id")
	}
	var pID pgtype.UUID
	if productID != "" {
		if pID, err = db.ParseUUID(productID); err != nil {
			return nil, common.ValidationErr(err, "invalid product id")
		}
	}
	var rows []dbgen.SumOnHandByStoreRow
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		if err := ensureStore(ctx, q, sID); err != nil {
			return err
		}
		var err error
		rows, err = q.SumOnHandByStore(ctx, dbgen.SumOnHandByStoreParams{StoreID: sID, ProductID: pID})
		if err != nil {
			return common.Internal("unable to aggregate on-hand", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]OnHandView, 0, len(rows))
	for _, row := range rows {
		out = append(out, OnHandView{
			ProductID:      db.UUIDString(row.ProductID),
			QuantityOnHand: money.FormatQuantity(row.QuantityOnHand),
			LotCount:       row.LotCount,
		})
	}
	return out, nil
}

// Receive credits lots of a product at a store and records a RECEIPT movement.
func (s *Service) Receive(ctx context.Context, in ReceiveInput) (ReceiveOutput, error) {
	if s == nil || s.DB == nil {
		return ReceiveOutput{}, common.Internal("inventory service not configured", nil)
	}
	if err := common.ValidateStruct(in); err != nil {
		return ReceiveOutput{}, err
	}
	sID, pID, err := parseStoreProduct(in.StoreID, in.ProductID)
	if err != nil {
		return ReceiveOutput{}, err
	}
	type lotReq struct {
		code   string
		expiry pgtype.Date
		qty    decimal.Decimal
	}
	reqs := make([]lotReq, 0, len(in.Lots))
	seen := map[string]bool{}
	total := decimal.Zero
	for i, l := range in.Lots {
		code := strings.ToUpper(strings.TrimSpace(l.LotCode))
		if code == "" || len(code) > maxLotCodeLength {
			return ReceiveOutput{}, common.Validation("lot %d: lot code is required and at most %d characters", i+1, maxLotCodeLength)
		}
		if seen[code] {
			return ReceiveOutput{}, common.Validation("lot %d: duplicate lot code %s", i+1, code)
		}
		seen[code] = true
		qty, err := money.Quantity(l.Quantity)
		if err != nil {
			return ReceiveOutput{}, common.ValidationErr(err, "lot %d: quantity must be positive with at most 3 decimals", i+1)
		}
		var expiry pgtype.Date
		if l.ExpiryDate != nil && *l.ExpiryDate != "" {
			t, err := time.Parse(time.DateOnly, *l.ExpiryDate)
			if err != nil {
				return ReceiveOutput{}, common.ValidationErr(err, "lot %d: invalid expiry date", i+1)
			}
			expiry = pgtype.Date{Time: t, Valid: true}
		}
		reqs = append(reqs, lotReq{code: code, expiry: expiry, qty: qty})
		total = total.Add(qty)
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = "RCV-" + s.now().Format("20060102150405")
	}
	out := ReceiveOutput{StoreID: in.StoreID, ProductID: in.ProductID, Reference: ref}
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		if err := ensureStore(ctx, q, sID); err != nil {
			return err
		}
		if _, err := q.GetProduct(ctx, pID); err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("product not found")
			}
			return common.Internal("unable to load product", err)
		}
		plan := make([]Allocation, 0, len(reqs))
		for _, r := range reqs {
			lot, err := q.UpsertInventoryLot(ctx, dbgen.UpsertInventoryLotParams{StoreID: sID, ProductID: pID, LotCode: r.code, ExpiryDate: r.expiry})
			if err != nil {
				return common.Internal("unable to upsert lot", err)
			}
			bal, err := q.CreditLotBalance(ctx, dbgen.CreditLotBalanceParams{LotID: lot.ID, QuantityOnHand: r.qty})
			if err != nil {
				return common.Internal("unable to credit lot", err)
			}
			plan = append(plan, Allocation{LotID: lot.ID, LotCode: lot.LotCode, Quantity: r.qty, Seq: len(plan) + 1})
			received := lot.ReceivedAt.Time
			out.Lots = append(out.Lots, LotView{
				LotID:          lot.ID,
				LotCode:        lot.LotCode,
				ExpiryDate:     formatDate(lot.ExpiryDate),
				ReceivedAt:     &received,
				QuantityOnHand: money.FormatQuantity(bal.QuantityOnHand),
			})
		}
		return recordMovement(ctx, q, MovementReceipt, sID, pID, pgtype.UUID{}, total, ref, plan)
	})
	if err != nil {
		return ReceiveOutput{}, err
	}
	s.Logger.Info().Str("store_id", in.StoreID).Str("product_id", in.ProductID).Int("lots", len(out.Lots)).Msg("lots received")
	return out, nil
}

func parseStoreProduct(storeID, productID string) (pgtype.UUID, pgtype.UUID, error) {
	sID, err := db.ParseUUID(storeID)
	if err != nil {
		return pgtype.UUID{}, pgtype.UUID{}, common.ValidationErr(err, "invalid store id")
	}
	pID, err := db.ParseUUID(productID)
	if err != nil {
		return pgtype.UUID{}, pgtype.UUID{}, common.ValidationErr(err, "invalid product id")
	}
	return sID, pID, nil
}

func ensureStore(ctx context.Context, q dbgen.Querier, id pgtype.UUID) error {
	if _, err := q.GetStore(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return common.NotFound("store not found")
		}
		return common.Internal("unable to load store", err)
	}
	return nil
}

func formatDate(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(time.DateOnly)
	return &s
}
