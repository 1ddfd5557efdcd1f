package memdb

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

func cmpUUID(a, b pgtype.UUID) int {
	return bytes.Compare(a.Bytes[:], b.Bytes[:])
}

func sameUUID(a, b pgtype.UUID) bool {
	return a.Valid && b.Valid && a.Bytes == b.Bytes
}

// cmpExpiry orders dates ascending with nulls last.
func cmpExpiry(a, b pgtype.Date) int {
	switch {
	case a.Valid && b.Valid:
		return a.Time.Compare(b.Time)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	}
	return 0
}

func idemKey(endpoint, key string) string {
	return endpoint + "\x00" + key
}

// catalog

func (tx *Tx) GetProduct(_ context.Context, id pgtype.UUID) (dbgen.Product, error) {
	row, ok := tx.t.products[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetProductsByIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.Product, error) {
	out := make([]dbgen.Product, 0, len(ids))
	seen := map[key]bool{}
	for _, id := range ids {
		if seen[id.Bytes] {
			continue
		}
		seen[id.Bytes] = true
		if row, ok := tx.t.products[id.Bytes]; ok {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.Product) int { return cmpUUID(a.ID, b.ID) })
	return out, nil
}

func (tx *Tx) GetStore(_ context.Context, id pgtype.UUID) (dbgen.Store, error) {
	row, ok := tx.t.stores[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Store{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetTerminal(_ context.Context, id pgtype.UUID) (dbgen.Terminal, error) {
	row, ok := tx.t.terminals[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Terminal{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetStorePriceAt(_ context.Context, arg dbgen.GetStorePriceAtParams) (decimal.Decimal, error) {
	var best *dbgen.StorePrice
	for i := range tx.t.storePrices {
		p := &tx.t.storePrices[i]
		if !sameUUID(p.StoreID, arg.StoreID) || !sameUUID(p.ProductID, arg.ProductID) {
			continue
		}
		if p.EffectiveFrom.Time.After(arg.At.Time) {
			continue
		}
		if p.EffectiveTo.Valid && !p.EffectiveTo.Time.After(arg.At.Time) {
			continue
		}
		if best == nil || p.EffectiveFrom.Time.After(best.EffectiveFrom.Time) {
			best = p
		}
	}
	if best == nil {
		return decimal.Decimal{}, pgx.ErrNoRows
	}
	return best.Price, nil
}

// tax and rounding

func (tx *Tx) GetTaxGroup(_ context.Context, id pgtype.UUID) (dbgen.TaxGroup, error) {
	row, ok := tx.t.taxGroups[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.TaxGroup{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetActiveStoreTaxRule(_ context.Context, arg dbgen.GetActiveStoreTaxRuleParams) (dbgen.StoreTaxRule, error) {
	var candidates []dbgen.StoreTaxRule
	for _, r := range tx.t.storeTaxRules {
		if !r.Active || !sameUUID(r.StoreID, arg.StoreID) || !sameUUID(r.TaxGroupID, arg.TaxGroupID) {
			continue
		}
		if r.EffectiveFrom.Valid && r.EffectiveFrom.Time.After(arg.At.Time) {
			continue
		}
		if r.EffectiveTo.Valid && !r.EffectiveTo.Time.After(arg.At.Time) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return dbgen.StoreTaxRule{}, pgx.ErrNoRows
	}
	slices.SortStableFunc(candidates, func(a, b dbgen.StoreTaxRule) int {
		switch {
		case a.EffectiveFrom.Valid && b.EffectiveFrom.Valid:
			if c := b.EffectiveFrom.Time.Compare(a.EffectiveFrom.Time); c != 0 {
				return c
			}
		case a.EffectiveFrom.Valid:
			return -1
		case b.EffectiveFrom.Valid:
			return 1
		}
		return cmpUUID(a.ID, b.ID)
	})
	return candidates[0], nil
}

func (tx *Tx) GetActiveRoundingPolicy(_ context.Context, arg dbgen.GetActiveRoundingPolicyParams) (dbgen.RoundingPolicy, error) {
	for _, p := range tx.t.roundingPolicies {
		if p.Active && sameUUID(p.StoreID, arg.StoreID) && p.TenderType == arg.TenderType {
			return p, nil
		}
	}
	return dbgen.RoundingPolicy{}, pgx.ErrNoRows
}

// promotions

func (tx *Tx) ListActivePromotionsByMerchant(_ context.Context, merchantID pgtype.UUID) ([]dbgen.Promotion, error) {
	var out []dbgen.Promotion
	for _, p := range tx.t.promotions {
		if p.Active && sameUUID(p.MerchantID, merchantID) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.Promotion) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (tx *Tx) ListPromotionRulesByPromotionIDs(_ context.Context, ids []int64) ([]dbgen.PromotionRule, error) {
	var out []dbgen.PromotionRule
	for _, r := range tx.t.promotionRules {
		if slices.Contains(ids, r.PromotionID) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.PromotionRule) int {
		return cmp.Or(cmp.Compare(a.PromotionID, b.PromotionID), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (tx *Tx) ListPromotionWindowsByPromotionIDs(_ context.Context, ids []int64) ([]dbgen.PromotionWindow, error) {
	var out []dbgen.PromotionWindow
	for _, w := range tx.t.promotionWindows {
		if slices.Contains(ids, w.PromotionID) {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.PromotionWindow) int {
		return cmp.Or(cmp.Compare(a.PromotionID, b.PromotionID), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// inventory

func (tx *Tx) UpsertInventoryLot(_ context.Context, arg dbgen.UpsertInventoryLotParams) (dbgen.InventoryLot, error) {
	for id, lot := range tx.t.lots {
		if sameUUID(lot.StoreID, arg.StoreID) && sameUUID(lot.ProductID, arg.ProductID) && lot.LotCode == arg.LotCode {
			if !lot.ExpiryDate.Valid {
				lot.ExpiryDate = arg.ExpiryDate
				tx.t.lots[id] = lot
			}
			return lot, nil
		}
	}
	lot := dbgen.InventoryLot{
		ID:         tx.nextSerial(),
		StoreID:    arg.StoreID,
		ProductID:  arg.ProductID,
		LotCode:    arg.LotCode,
		ExpiryDate: arg.ExpiryDate,
		ReceivedAt: tx.ts(),
	}
	tx.t.lots[lot.ID] = lot
	return lot, nil
}

func (tx *Tx) CreditLotBalance(_ context.Context, arg dbgen.CreditLotBalanceParams) (dbgen.InventoryLotBalance, error) {
	bal, ok := tx.t.balances[arg.LotID]
	if ok {
		bal.QuantityOnHand = bal.QuantityOnHand.Add(arg.QuantityOnHand)
	} else {
		bal = dbgen.InventoryLotBalance{LotID: arg.LotID, QuantityOnHand: arg.QuantityOnHand}
	}
	if bal.QuantityOnHand.IsNegative() {
		return dbgen.InventoryLotBalance{}, checkViolation("inventory_lot_balances_quantity_on_hand_check")
	}
	bal.UpdatedAt = tx.ts()
	tx.t.balances[arg.LotID] = bal
	return bal, nil
}

func (tx *Tx) SetLotBalance(_ context.Context, arg dbgen.SetLotBalanceParams) error {
	bal, ok := tx.t.balances[arg.LotID]
	if !ok {
		return nil
	}
	if arg.QuantityOnHand.IsNegative() {
		return checkViolation("inventory_lot_balances_quantity_on_hand_check")
	}
	bal.QuantityOnHand = arg.QuantityOnHand
	bal.UpdatedAt = tx.ts()
	tx.t.balances[arg.LotID] = bal
	return nil
}

func (tx *Tx) LockLotBalance(_ context.Context, lotID int64) (dbgen.InventoryLotBalance, error) {
	bal, ok := tx.t.balances[lotID]
	if !ok {
		return dbgen.InventoryLotBalance{}, pgx.ErrNoRows
	}
	return bal, nil
}

func (tx *Tx) lotsFor(storeID, productID pgtype.UUID) []dbgen.InventoryLot {
	var out []dbgen.InventoryLot
	for _, lot := range tx.t.lots {
		if sameUUID(lot.StoreID, storeID) && sameUUID(lot.ProductID, productID) {
			out = append(out, lot)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.InventoryLot) int {
		return cmp.Or(cmpExpiry(a.ExpiryDate, b.ExpiryDate), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (tx *Tx) LockLotBalancesForProduct(_ context.Context, arg dbgen.LockLotBalancesForProductParams) ([]dbgen.LockLotBalancesForProductRow, error) {
	var out []dbgen.LockLotBalancesForProductRow
	for _, lot := range tx.lotsFor(arg.StoreID, arg.ProductID) {
		bal, ok := tx.t.balances[lot.ID]
		if !ok || !bal.QuantityOnHand.IsPositive() {
			continue
		}
		out = append(out, dbgen.LockLotBalancesForProductRow{
			LotID:          lot.ID,
			LotCode:        lot.LotCode,
			ExpiryDate:     lot.ExpiryDate,
			QuantityOnHand: bal.QuantityOnHand,
		})
	}
	return out, nil
}

func (tx *Tx) ListLotBalances(_ context.Context, arg dbgen.ListLotBalancesParams) ([]dbgen.ListLotBalancesRow, error) {
	var out []dbgen.ListLotBalancesRow
	for _, lot := range tx.lotsFor(arg.StoreID, arg.ProductID) {
		bal, ok := tx.t.balances[lot.ID]
		if !ok {
			continue
		}
		out = append(out, dbgen.ListLotBalancesRow{
			LotID:          lot.ID,
			LotCode:        lot.LotCode,
			ExpiryDate:     lot.ExpiryDate,
			ReceivedAt:     lot.ReceivedAt,
			QuantityOnHand: bal.QuantityOnHand,
		})
	}
	return out, nil
}

func (tx *Tx) SumOnHandByStore(_ context.Context, arg dbgen.SumOnHandByStoreParams) ([]dbgen.SumOnHandByStoreRow, error) {
	sums := map[key]*dbgen.SumOnHandByStoreRow{}
	for _, lot := range tx.t.lots {
		if !sameUUID(lot.StoreID, arg.StoreID) {
			continue
		}
		if arg.ProductID.Valid && !sameUUID(lot.ProductID, arg.ProductID) {
			continue
		}
		bal, ok := tx.t.balances[lot.ID]
		if !ok {
			continue
		}
		row, ok := sums[lot.ProductID.Bytes]
		if !ok {
			row = &dbgen.SumOnHandByStoreRow{ProductID: lot.ProductID}
			sums[lot.ProductID.Bytes] = row
		}
		row.QuantityOnHand = row.QuantityOnHand.Add(bal.QuantityOnHand)
		row.LotCount++
	}
	out := make([]dbgen.SumOnHandByStoreRow, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b dbgen.SumOnHandByStoreRow) int { return cmpUUID(a.ProductID, b.ProductID) })
	return out, nil
}

func (tx *Tx) InsertInventoryMovement(_ context.Context, arg dbgen.InsertInventoryMovementParams) (dbgen.InventoryMovement, error) {
	row := dbgen.InventoryMovement{
		ID:              newID(),
		StoreID:         arg.StoreID,
		ProductID:       arg.ProductID,
		MovementType:    arg.MovementType,
		QuantityDelta:   arg.QuantityDelta,
		ReferenceNumber: arg.ReferenceNumber,
		SaleLineID:      arg.SaleLineID,
		CreatedAt:       tx.ts(),
	}
	tx.t.movements = append(tx.t.movements, row)
	return row, nil
}

func (tx *Tx) InsertInventoryMovementLot(_ context.Context, arg dbgen.InsertInventoryMovementLotParams) error {
	if !arg.Quantity.IsPositive() {
		return checkViolation("inventory_movement_lots_quantity_check")
	}
	tx.t.movementLots = append(tx.t.movementLots, dbgen.InventoryMovementLot{
		ID:         newID(),
		MovementID: arg.MovementID,
		LotID:      arg.LotID,
		Quantity:   arg.Quantity,
		Seq:        arg.Seq,
	})
	return nil
}

func (tx *Tx) ListMovementLotsBySaleLine(_ context.Context, saleLineID pgtype.UUID) ([]dbgen.ListMovementLotsBySaleLineRow, error) {
	var out []dbgen.ListMovementLotsBySaleLineRow
	for _, m := range tx.t.movements {
		if !sameUUID(m.SaleLineID, saleLineID) {
			continue
		}
		var rows []dbgen.ListMovementLotsBySaleLineRow
		for _, ml := range tx.t.movementLots {
			if sameUUID(ml.MovementID, m.ID) {
				rows = append(rows, dbgen.ListMovementLotsBySaleLineRow{
					MovementType: m.MovementType,
					LotID:        ml.LotID,
					Quantity:     ml.Quantity,
					Seq:          ml.Seq,
				})
			}
		}
		slices.SortFunc(rows, func(a, b dbgen.ListMovementLotsBySaleLineRow) int { return cmp.Compare(a.Seq, b.Seq) })
		out = append(out, rows...)
	}
	return out, nil
}

// carts

func (tx *Tx) CreateCart(_ context.Context, arg dbgen.CreateCartParams) (dbgen.Cart, error) {
	zero := decimal.Zero
	row := dbgen.Cart{
		ID:                 newID(),
		CashierID:          arg.CashierID,
		StoreID:            arg.StoreID,
		TerminalID:         arg.TerminalID,
		Status:             arg.Status,
		PricingAt:          arg.PricingAt,
		SubtotalNet:        zero,
		TotalDiscount:      zero,
		TotalTax:           zero,
		TotalGross:         zero,
		RoundingAdjustment: zero,
		TotalPayable:       zero,
		CreatedAt:          tx.ts(),
		UpdatedAt:          tx.ts(),
	}
	tx.t.carts[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) GetCart(_ context.Context, id pgtype.UUID) (dbgen.Cart, error) {
	row, ok := tx.t.carts[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetCartForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Cart, error) {
	return tx.GetCart(ctx, id)
}

func (tx *Tx) UpdateCartStatus(_ context.Context, arg dbgen.UpdateCartStatusParams) (dbgen.Cart, error) {
	row, ok := tx.t.carts[arg.ID.Bytes]
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	row.Status = arg.Status
	row.ParkedReference = arg.ParkedReference
	row.ParkedUntil = arg.ParkedUntil
	row.UpdatedAt = tx.ts()
	tx.t.carts[arg.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) UpdateCartTotals(_ context.Context, arg dbgen.UpdateCartTotalsParams) (dbgen.Cart, error) {
	row, ok := tx.t.carts[arg.ID.Bytes]
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	row.Status = arg.Status
	row.PricingAt = arg.PricingAt
	row.SubtotalNet = arg.SubtotalNet
	row.TotalDiscount = arg.TotalDiscount
	row.TotalTax = arg.TotalTax
	row.TotalGross = arg.TotalGross
	row.RoundingAdjustment = arg.RoundingAdjustment
	row.TotalPayable = arg.TotalPayable
	row.AppliedPromotionID = arg.AppliedPromotionID
	row.UpdatedAt = tx.ts()
	tx.t.carts[arg.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) ExpireParkedCarts(_ context.Context, parkedUntil pgtype.Timestamptz) (int64, error) {
	var n int64
	for id, row := range tx.t.carts {
		if row.Status == "PARKED" && row.ParkedUntil.Valid && row.ParkedUntil.Time.Before(parkedUntil.Time) {
			row.Status = "EXPIRED"
			row.UpdatedAt = tx.ts()
			tx.t.carts[id] = row
			n++
		}
	}
	return n, nil
}

func (tx *Tx) GetCartLine(_ context.Context, id pgtype.UUID) (dbgen.CartLine, error) {
	row, ok := tx.t.cartLines[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.CartLine{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetCartLineByKey(_ context.Context, arg dbgen.GetCartLineByKeyParams) (dbgen.CartLine, error) {
	if !arg.LineKey.Valid {
		return dbgen.CartLine{}, pgx.ErrNoRows
	}
	for _, row := range tx.t.cartLines {
		if sameUUID(row.CartID, arg.CartID) && row.LineKey.Valid && row.LineKey.String == arg.LineKey.String {
			return row, nil
		}
	}
	return dbgen.CartLine{}, pgx.ErrNoRows
}

func (tx *Tx) NextCartLineNo(_ context.Context, cartID pgtype.UUID) (int32, error) {
	var maxNo int32
	for _, row := range tx.t.cartLines {
		if sameUUID(row.CartID, cartID) && row.LineNo > maxNo {
			maxNo = row.LineNo
		}
	}
	return maxNo + 1, nil
}

func (tx *Tx) InsertCartLine(ctx context.Context, arg dbgen.InsertCartLineParams) (dbgen.CartLine, error) {
	for _, row := range tx.t.cartLines {
		if !sameUUID(row.CartID, arg.CartID) {
			continue
		}
		if row.LineNo == arg.LineNo {
			return dbgen.CartLine{}, uniqueViolation("cart_lines_cart_id_line_no_key")
		}
		if arg.LineKey.Valid && row.LineKey.Valid && row.LineKey.String == arg.LineKey.String {
			return dbgen.CartLine{}, uniqueViolation("cart_lines_key_uidx")
		}
	}
	zero := decimal.Zero
	row := dbgen.CartLine{
		ID:              newID(),
		CartID:          arg.CartID,
		LineNo:          arg.LineNo,
		LineKey:         arg.LineKey,
		ProductID:       arg.ProductID,
		Quantity:        arg.Quantity,
		UnitPrice:       arg.UnitPrice,
		PriceOverridden: arg.PriceOverridden,
		OverrideReason:  arg.OverrideReason,
		LineAmount:      zero,
		Discount:        zero,
		NetAmount:       zero,
		TaxAmount:       zero,
		GrossAmount:     zero,
		TaxRatePercent:  zero,
		CreatedAt:       tx.ts(),
	}
	tx.t.cartLines[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) UpdateCartLineInput(_ context.Context, arg dbgen.UpdateCartLineInputParams) (dbgen.CartLine, error) {
	row, ok := tx.t.cartLines[arg.ID.Bytes]
	if !ok {
		return dbgen.CartLine{}, pgx.ErrNoRows
	}
	row.ProductID = arg.ProductID
	row.Quantity = arg.Quantity
	row.UnitPrice = arg.UnitPrice
	row.PriceOverridden = arg.PriceOverridden
	row.OverrideReason = arg.OverrideReason
	tx.t.cartLines[arg.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) UpdateCartLinePricing(_ context.Context, arg dbgen.UpdateCartLinePricingParams) error {
	row, ok := tx.t.cartLines[arg.ID.Bytes]
	if !ok {
		return nil
	}
	row.UnitPrice = arg.UnitPrice
	row.LineAmount = arg.LineAmount
	row.Discount = arg.Discount
	row.NetAmount = arg.NetAmount
	row.TaxAmount = arg.TaxAmount
	row.GrossAmount = arg.GrossAmount
	row.TaxRatePercent = arg.TaxRatePercent
	row.TaxExempt = arg.TaxExempt
	tx.t.cartLines[arg.ID.Bytes] = row
	return nil
}

func (tx *Tx) DeleteCartLine(_ context.Context, id pgtype.UUID) error {
	delete(tx.t.cartLines, id.Bytes)
	return nil
}

func (tx *Tx) ListCartLines(_ context.Context, cartID pgtype.UUID) ([]dbgen.CartLine, error) {
	var out []dbgen.CartLine
	for _, row := range tx.t.cartLines {
		if sameUUID(row.CartID, cartID) {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.CartLine) int { return cmp.Compare(a.LineNo, b.LineNo) })
	return out, nil
}

// sales and receipts

func (tx *Tx) EnsureReceiptSeries(_ context.Context, arg dbgen.EnsureReceiptSeriesParams) error {
	if _, ok := tx.t.receiptSeries[arg.TerminalID.Bytes]; ok {
		return nil
	}
	tx.t.receiptSeries[arg.TerminalID.Bytes] = dbgen.ReceiptSeries{
		ID:         newID(),
		TerminalID: arg.TerminalID,
		SeriesCode: arg.SeriesCode,
		NextNumber: 1,
		CreatedAt:  tx.ts(),
	}
	return nil
}

func (tx *Tx) NextReceiptNumber(_ context.Context, terminalID pgtype.UUID) (dbgen.NextReceiptNumberRow, error) {
	series, ok := tx.t.receiptSeries[terminalID.Bytes]
	if !ok {
		return dbgen.NextReceiptNumberRow{}, pgx.ErrNoRows
	}
	series.NextNumber++
	tx.t.receiptSeries[terminalID.Bytes] = series
	return dbgen.NextReceiptNumberRow{SeriesCode: series.SeriesCode, Number: series.NextNumber - 1}, nil
}

func (tx *Tx) InsertSale(_ context.Context, arg dbgen.InsertSaleParams) (dbgen.Sale, error) {
	for _, s := range tx.t.sales {
		if sameUUID(s.CartID, arg.CartID) {
			return dbgen.Sale{}, uniqueViolation("sales_cart_id_key")
		}
		if s.ReceiptNumber == arg.ReceiptNumber {
			return dbgen.Sale{}, uniqueViolation("sales_receipt_number_key")
		}
	}
	row := dbgen.Sale{
		ID:                 newID(),
		CartID:             arg.CartID,
		StoreID:            arg.StoreID,
		TerminalID:         arg.TerminalID,
		CashierID:          arg.CashierID,
		CustomerRef:        arg.CustomerRef,
		ReceiptNumber:      arg.ReceiptNumber,
		InvoiceRequired:    arg.InvoiceRequired,
		SubtotalNet:        arg.SubtotalNet,
		TotalDiscount:      arg.TotalDiscount,
		TotalTax:           arg.TotalTax,
		TotalGross:         arg.TotalGross,
		RoundingAdjustment: arg.RoundingAdjustment,
		TotalPayable:       arg.TotalPayable,
		AppliedPromotionID: arg.AppliedPromotionID,
		CreatedAt:          tx.ts(),
	}
	tx.t.sales[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) GetSale(_ context.Context, id pgtype.UUID) (dbgen.Sale, error) {
	row, ok := tx.t.sales[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Sale{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetSaleForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Sale, error) {
	return tx.GetSale(ctx, id)
}

func (tx *Tx) GetSaleByCartID(_ context.Context, cartID pgtype.UUID) (dbgen.Sale, error) {
	for _, s := range tx.t.sales {
		if sameUUID(s.CartID, cartID) {
			return s, nil
		}
	}
	return dbgen.Sale{}, pgx.ErrNoRows
}

func (tx *Tx) GetSaleByReceiptNumber(_ context.Context, receiptNumber string) (dbgen.Sale, error) {
	for _, s := range tx.t.sales {
		if strings.EqualFold(s.ReceiptNumber, receiptNumber) {
			return s, nil
		}
	}
	return dbgen.Sale{}, pgx.ErrNoRows
}

func (tx *Tx) InsertSaleLine(_ context.Context, arg dbgen.InsertSaleLineParams) (dbgen.SaleLine, error) {
	row := dbgen.SaleLine{
		ID:          newID(),
		SaleID:      arg.SaleID,
		LineNumber:  arg.LineNumber,
		ProductID:   arg.ProductID,
		Quantity:    arg.Quantity,
		UnitPrice:   arg.UnitPrice,
		Discount:    arg.Discount,
		NetAmount:   arg.NetAmount,
		TaxAmount:   arg.TaxAmount,
		GrossAmount: arg.GrossAmount,
	}
	tx.t.saleLines[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) ListSaleLines(_ context.Context, saleID pgtype.UUID) ([]dbgen.SaleLine, error) {
	var out []dbgen.SaleLine
	for _, row := range tx.t.saleLines {
		if sameUUID(row.SaleID, saleID) {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.SaleLine) int { return cmp.Compare(a.LineNumber, b.LineNumber) })
	return out, nil
}

// payments

func (tx *Tx) InsertPayment(_ context.Context, arg dbgen.InsertPaymentParams) (dbgen.Payment, error) {
	for _, p := range tx.t.payments {
		if sameUUID(p.SaleID, arg.SaleID) {
			return dbgen.Payment{}, uniqueViolation("payments_sale_id_key")
		}
	}
	row := dbgen.Payment{
		ID:             newID(),
		SaleID:         arg.SaleID,
		Status:         arg.Status,
		TotalPayable:   arg.TotalPayable,
		TotalAllocated: arg.TotalAllocated,
		ChangeAmount:   arg.ChangeAmount,
		CapturedAt:     arg.CapturedAt,
		UpdatedAt:      tx.ts(),
	}
	tx.t.payments[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) GetPayment(_ context.Context, id pgtype.UUID) (dbgen.Payment, error) {
	row, ok := tx.t.payments[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.Payment{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetPaymentForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Payment, error) {
	return tx.GetPayment(ctx, id)
}

func (tx *Tx) GetPaymentBySaleID(_ context.Context, saleID pgtype.UUID) (dbgen.Payment, error) {
	for _, p := range tx.t.payments {
		if sameUUID(p.SaleID, saleID) {
			return p, nil
		}
	}
	return dbgen.Payment{}, pgx.ErrNoRows
}

func (tx *Tx) UpdatePaymentStatus(_ context.Context, arg dbgen.UpdatePaymentStatusParams) (dbgen.Payment, error) {
	row, ok := tx.t.payments[arg.ID.Bytes]
	if !ok {
		return dbgen.Payment{}, pgx.ErrNoRows
	}
	row.Status = arg.Status
	row.UpdatedAt = tx.ts()
	tx.t.payments[arg.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) InsertPaymentAllocation(_ context.Context, arg dbgen.InsertPaymentAllocationParams) (dbgen.PaymentAllocation, error) {
	if !arg.Amount.IsPositive() {
		return dbgen.PaymentAllocation{}, checkViolation("payment_allocations_amount_check")
	}
	row := dbgen.PaymentAllocation{
		ID:            newID(),
		PaymentID:     arg.PaymentID,
		Seq:           arg.Seq,
		TenderType:    arg.TenderType,
		Amount:        arg.Amount,
		AppliedAmount: arg.AppliedAmount,
		ChangeAmount:  arg.ChangeAmount,
		Reference:     arg.Reference,
	}
	tx.t.allocations = append(tx.t.allocations, row)
	return row, nil
}

func (tx *Tx) ListPaymentAllocations(_ context.Context, paymentID pgtype.UUID) ([]dbgen.PaymentAllocation, error) {
	var out []dbgen.PaymentAllocation
	for _, row := range tx.t.allocations {
		if sameUUID(row.PaymentID, paymentID) {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(a, b dbgen.PaymentAllocation) int { return cmp.Compare(a.Seq, b.Seq) })
	return out, nil
}

func (tx *Tx) InsertPaymentTransition(_ context.Context, arg dbgen.InsertPaymentTransitionParams) (dbgen.PaymentTransition, error) {
	row := dbgen.PaymentTransition{
		ID:         newID(),
		PaymentID:  arg.PaymentID,
		Action:     arg.Action,
		FromStatus: arg.FromStatus,
		ToStatus:   arg.ToStatus,
		Note:       arg.Note,
		CreatedAt:  tx.ts(),
	}
	tx.t.transitions = append(tx.t.transitions, row)
	return row, nil
}

func (tx *Tx) ListPaymentTransitions(_ context.Context, paymentID pgtype.UUID) ([]dbgen.PaymentTransition, error) {
	var out []dbgen.PaymentTransition
	for _, row := range tx.t.transitions {
		if sameUUID(row.PaymentID, paymentID) {
			out = append(out, row)
		}
	}
	return out, nil
}

// returns

func (tx *Tx) CountSaleReturns(_ context.Context, saleID pgtype.UUID) (int64, error) {
	var n int64
	for _, r := range tx.t.saleReturns {
		if sameUUID(r.SaleID, saleID) {
			n++
		}
	}
	return n, nil
}

func (tx *Tx) GetSaleReturn(_ context.Context, id pgtype.UUID) (dbgen.SaleReturn, error) {
	row, ok := tx.t.saleReturns[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.SaleReturn{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) InsertSaleReturn(_ context.Context, arg dbgen.InsertSaleReturnParams) (dbgen.SaleReturn, error) {
	for _, r := range tx.t.saleReturns {
		if r.ReturnReference == arg.ReturnReference {
			return dbgen.SaleReturn{}, uniqueViolation("sale_returns_return_reference_key")
		}
	}
	row := dbgen.SaleReturn{
		ID:               newID(),
		SaleID:           arg.SaleID,
		ReturnReference:  arg.ReturnReference,
		Reason:           arg.Reason,
		RefundTenderType: arg.RefundTenderType,
		TotalGross:       arg.TotalGross,
		CreatedAt:        tx.ts(),
	}
	tx.t.saleReturns[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) InsertSaleReturnLine(_ context.Context, arg dbgen.InsertSaleReturnLineParams) (dbgen.SaleReturnLine, error) {
	if !arg.Quantity.IsPositive() {
		return dbgen.SaleReturnLine{}, checkViolation("sale_return_lines_quantity_check")
	}
	row := dbgen.SaleReturnLine{
		ID:           newID(),
		SaleReturnID: arg.SaleReturnID,
		SaleLineID:   arg.SaleLineID,
		Quantity:     arg.Quantity,
		GrossAmount:  arg.GrossAmount,
	}
	tx.t.returnLines = append(tx.t.returnLines, row)
	return row, nil
}

func (tx *Tx) SumReturnedBySaleLine(_ context.Context, saleLineID pgtype.UUID) (dbgen.SumReturnedBySaleLineRow, error) {
	out := dbgen.SumReturnedBySaleLineRow{Quantity: decimal.Zero, GrossAmount: decimal.Zero}
	for _, row := range tx.t.returnLines {
		if sameUUID(row.SaleLineID, saleLineID) {
			out.Quantity = out.Quantity.Add(row.Quantity)
			out.GrossAmount = out.GrossAmount.Add(row.GrossAmount)
		}
	}
	return out, nil
}

// idempotency

func (tx *Tx) InsertIdempotencyKey(_ context.Context, arg dbgen.InsertIdempotencyKeyParams) (int64, error) {
	k := idemKey(arg.EndpointKey, arg.IdempotencyKey)
	if _, ok := tx.t.idempotency[k]; ok {
		return 0, nil
	}
	tx.t.idempotency[k] = dbgen.IdempotencyKey{
		ID:             newID(),
		EndpointKey:    arg.EndpointKey,
		IdempotencyKey: arg.IdempotencyKey,
		RequestHash:    arg.RequestHash,
		Status:         "PENDING",
		CreatedAt:      tx.ts(),
	}
	return 1, nil
}

func (tx *Tx) GetIdempotencyKeyForUpdate(_ context.Context, arg dbgen.GetIdempotencyKeyForUpdateParams) (dbgen.IdempotencyKey, error) {
	row, ok := tx.t.idempotency[idemKey(arg.EndpointKey, arg.IdempotencyKey)]
	if !ok {
		return dbgen.IdempotencyKey{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) CompleteIdempotencyKey(_ context.Context, arg dbgen.CompleteIdempotencyKeyParams) error {
	k := idemKey(arg.EndpointKey, arg.IdempotencyKey)
	row, ok := tx.t.idempotency[k]
	if !ok {
		return nil
	}
	row.Status = "COMPLETED"
	row.ResponsePayload = slices.Clone(arg.ResponsePayload)
	row.CompletedAt = tx.ts()
	tx.t.idempotency[k] = row
	return nil
}

// fiscal

func (tx *Tx) InsertFiscalDocument(_ context.Context, arg dbgen.InsertFiscalDocumentParams) (dbgen.FiscalDocument, error) {
	for _, d := range tx.t.fiscalDocs {
		if d.DocumentType != arg.DocumentType {
			continue
		}
		if arg.SaleReturnID.Valid && sameUUID(d.SaleReturnID, arg.SaleReturnID) {
			return dbgen.FiscalDocument{}, uniqueViolation("fiscal_documents_return_uidx")
		}
		if !arg.SaleReturnID.Valid && !d.SaleReturnID.Valid && sameUUID(d.SaleID, arg.SaleID) {
			return dbgen.FiscalDocument{}, uniqueViolation("fiscal_documents_sale_uidx")
		}
	}
	row := dbgen.FiscalDocument{
		ID:               newID(),
		SaleID:           arg.SaleID,
		SaleReturnID:     arg.SaleReturnID,
		DocumentType:     arg.DocumentType,
		Status:           arg.Status,
		ProviderCode:     arg.ProviderCode,
		RequestReference: arg.RequestReference,
		UpdatedAt:        tx.ts(),
	}
	tx.t.fiscalDocs[row.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) GetFiscalDocument(_ context.Context, id pgtype.UUID) (dbgen.FiscalDocument, error) {
	row, ok := tx.t.fiscalDocs[id.Bytes]
	if !ok || !id.Valid {
		return dbgen.FiscalDocument{}, pgx.ErrNoRows
	}
	return row, nil
}

func (tx *Tx) GetFiscalDocumentForSale(_ context.Context, arg dbgen.GetFiscalDocumentForSaleParams) (dbgen.FiscalDocument, error) {
	for _, d := range tx.t.fiscalDocs {
		if sameUUID(d.SaleID, arg.SaleID) && !d.SaleReturnID.Valid && d.DocumentType == arg.DocumentType {
			return d, nil
		}
	}
	return dbgen.FiscalDocument{}, pgx.ErrNoRows
}

func (tx *Tx) GetFiscalDocumentForReturn(_ context.Context, arg dbgen.GetFiscalDocumentForReturnParams) (dbgen.FiscalDocument, error) {
	for _, d := range tx.t.fiscalDocs {
		if sameUUID(d.SaleReturnID, arg.SaleReturnID) && d.DocumentType == arg.DocumentType {
			return d, nil
		}
	}
	return dbgen.FiscalDocument{}, pgx.ErrNoRows
}

func (tx *Tx) UpdateFiscalDocument(_ context.Context, arg dbgen.UpdateFiscalDocumentParams) (dbgen.FiscalDocument, error) {
	row, ok := tx.t.fiscalDocs[arg.ID.Bytes]
	if !ok {
		return dbgen.FiscalDocument{}, pgx.ErrNoRows
	}
	row.Status = arg.Status
	row.ProviderCode = arg.ProviderCode
	row.ExternalDocumentID = arg.ExternalDocumentID
	row.Message = arg.Message
	row.IssuedAt = arg.IssuedAt
	row.CancelledAt = arg.CancelledAt
	row.UpdatedAt = tx.ts()
	tx.t.fiscalDocs[arg.ID.Bytes] = row
	return row, nil
}

func (tx *Tx) InsertFiscalEvent(_ context.Context, arg dbgen.InsertFiscalEventParams) error {
	tx.t.fiscalEvents = append(tx.t.fiscalEvents, dbgen.FiscalEvent{
		ID:               newID(),
		FiscalDocumentID: arg.FiscalDocumentID,
		EventType:        arg.EventType,
		Message:          arg.Message,
		CreatedAt:        tx.ts(),
	})
	return nil
}

func (tx *Tx) ListFiscalEvents(_ context.Context, fiscalDocumentID pgtype.UUID) ([]dbgen.FiscalEvent, error) {
	var out []dbgen.FiscalEvent
	for _, row := range tx.t.fiscalEvents {
		if sameUUID(row.FiscalDocumentID, fiscalDocumentID) {
			out = append(out, row)
		}
	}
	return out, nil
}

// events

func (tx *Tx) InsertDomainEvent(_ context.Context, arg dbgen.InsertDomainEventParams) (dbgen.InsertDomainEventRow, error) {
	row := dbgen.DomainEvent{
		ID:          newID(),
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     slices.Clone(arg.Payload),
		OccurredAt:  tx.ts(),
	}
	tx.t.events = append(tx.t.events, row)
	return dbgen.InsertDomainEventRow{
		ID:          row.ID,
		Topic:       row.Topic,
		AggregateID: row.AggregateID,
		Payload:     row.Payload,
		OccurredAt:  row.OccurredAt,
	}, nil
}
