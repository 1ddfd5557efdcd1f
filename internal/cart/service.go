// Package cart manages the mutable pre-sale cart and reprices it on every change.
package cart

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/rounding"
)

// Cart statuses.
const (
	StatusOpen       = "OPEN"
	StatusPriced     = "PRICED"
	StatusParked     = "PARKED"
	StatusCheckedOut = "CHECKED_OUT"
	StatusCancelled  = "CANCELLED"
	StatusExpired    = "EXPIRED"
)

const (
	defaultParkTTL   = 30 * time.Minute
	maxLinesPerCart  = 200
	maxLineKeyLength = 80
)

// Editable reports whether lines of a cart in status may change.
func Editable(status string) bool {
	return status == StatusOpen || status == StatusPriced
}

// StatusFor is the status a repriced editable cart takes.
func StatusFor(lines int) string {
	if lines == 0 {
		return StatusOpen
	}
	return StatusPriced
}

// CreateInput is the body of POST /carts.
type CreateInput struct {
	CashierID  string     `json:"cashierId" validate:"required,uuid"`
	StoreID    string     `json:"storeId" validate:"required,uuid"`
	TerminalID string     `json:"terminalId" validate:"required,uuid"`
	PricingAt  *time.Time `json:"pricingAt,omitempty"`
}

// AddLineInput is the body of POST /carts/{id}/lines.
type AddLineInput struct {
	ProductID           string           `json:"productId" validate:"required,uuid"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitPrice           *decimal.Decimal `json:"unitPrice,omitempty"`
	PriceOverrideReason *string          `json:"priceOverrideReason,omitempty" validate:"omitempty,max=200"`
	LineKey             *string          `json:"lineKey,omitempty" validate:"omitempty,max=80"`
}

// UpdateLineInput is the body of PUT /carts/{id}/lines/{lineId}.
type UpdateLineInput struct {
	Quantity            *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice           *decimal.Decimal `json:"unitPrice,omitempty"`
	PriceOverrideReason *string          `json:"priceOverrideReason,omitempty" validate:"omitempty,max=200"`
}

// RecalculateInput is the body of POST /carts/{id}/recalculate.
type RecalculateInput struct {
	TenderType       string `json:"tenderType,omitempty" validate:"omitempty,max=40"`
	RefreshPricingAt bool   `json:"refreshPricingAt,omitempty"`
}

// ParkInput is the body of POST /carts/{id}/park.
type ParkInput struct {
	Note string `json:"note,omitempty" validate:"max=200"`
}

// Service encapsulates cart domain operations.
type Service struct {
	DB      db.TxRunner
	Bus     *events.Bus
	ParkTTL time.Duration
	Now     func() time.Time
	Logger  zerolog.Logger
}

func (s *Service) parkTTL() time.Duration {
	if s == nil || s.ParkTTL <= 0 {
		return defaultParkTTL
	}
	return s.ParkTTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ready() error {
	if s == nil || s.DB == nil {
		return common.Internal("cart service not configured", nil)
	}
	return nil
}

// mutation runs fn in a transaction and publishes the events it recorded once committed.
func (s *Service) mutation(ctx context.Context, op string, fn func(q dbgen.Querier, record recorder) error) error {
	var recorded []dbgen.DomainEvent
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		recorded = recorded[:0]
		return fn(q, func(topic string, aggregate pgtype.UUID, payload any) error {
			ev, err := events.Record(ctx, q, topic, aggregate, payload)
			if err != nil {
				return common.Internal("unable to record cart event", err)
			}
			recorded = append(recorded, ev)
			return nil
		})
	})
	if err != nil {
		return err
	}
	obs.IncCartMutation(op)
	if err := s.Bus.Publish(ctx, recorded...); err != nil {
		s.Logger.Warn().Err(err).Str("operation", op).Msg("cart event delivery failed")
	}
	return nil
}

type recorder func(topic string, aggregate pgtype.UUID, payload any) error

// Create opens an empty cart for a cashier at a store terminal.
func (s *Service) Create(ctx context.Context, in CreateInput) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return Snapshot{}, err
	}
	cashierID, _ := db.ParseUUID(in.CashierID)
	storeID, _ := db.ParseUUID(in.StoreID)
	terminalID, _ := db.ParseUUID(in.TerminalID)
	at := s.now()
	if in.PricingAt != nil {
		at = in.PricingAt.UTC()
	}
	var out Snapshot
	err := s.mutation(ctx, "create", func(q dbgen.Querier, record recorder) error {
		store, err := q.GetStore(ctx, storeID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("store not found")
			}
			return common.Internal("unable to load store", err)
		}
		if !store.Active {
			return common.Validation("store %s is not active", store.Code)
		}
		terminal, err := q.GetTerminal(ctx, terminalID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("terminal not found")
			}
			return common.Internal("unable to load terminal", err)
		}
		if !db.UUIDEqual(terminal.StoreID, store.ID) {
			return common.Validation("terminal %s does not belong to store %s", terminal.Code, store.Code)
		}
		if !terminal.Active {
			return common.Validation("terminal %s is not active", terminal.Code)
		}
		c, err := q.CreateCart(ctx, dbgen.CreateCartParams{
			CashierID:  cashierID,
			StoreID:    storeID,
			TerminalID: terminalID,
			Status:     StatusOpen,
			PricingAt:  pgtype.Timestamptz{Time: at, Valid: true},
		})
		if err != nil {
			return common.Internal("unable to create cart", err)
		}
		if err := record(events.TopicCartCreated, c.ID, map[string]any{
			"cashierId":  in.CashierID,
			"storeId":    in.StoreID,
			"terminalId": in.TerminalID,
		}); err != nil {
			return err
		}
		out = NewSnapshot(c, nil)
		return nil
	})
	return out, err
}

// Get returns the current cart snapshot.
func (s *Service) Get(ctx context.Context, cartID string) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		c, err := q.GetCart(ctx, id)
		if err != nil {
			return notFoundOr(err, "cart")
		}
		lines, err := q.ListCartLines(ctx, id)
		if err != nil {
			return common.Internal("unable to load cart lines", err)
		}
		out = NewSnapshot(c, lines)
		return nil
	})
	return out, err
}

// AddLine appends a line, or replaces the line carrying the same lineKey, and reprices.
func (s *Service) AddLine(ctx context.Context, cartID string, in AddLineInput) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	productID, _ := db.ParseUUID(in.ProductID)
	qty, err := money.Quantity(in.Quantity)
	if err != nil {
		return Snapshot{}, common.ValidationErr(err, "quantity must be positive with at most 3 decimals")
	}
	var lineKey pgtype.Text
	if in.LineKey != nil {
		key := strings.TrimSpace(*in.LineKey)
		if len(key) > maxLineKeyLength {
			return Snapshot{}, common.Validation("lineKey must be at most %d characters", maxLineKeyLength)
		}
		lineKey = db.Text(key)
	}
	var out Snapshot
	err = s.mutation(ctx, "add_line", func(q dbgen.Querier, record recorder) error {
		c, err := s.lockEditable(ctx, q, id)
		if err != nil {
			return err
		}
		product, err := catalog.Product(ctx, q, productID)
		if err != nil {
			return err
		}
		price, err := resolveOverride(product, in.UnitPrice, in.PriceOverrideReason)
		if err != nil {
			return err
		}
		var (
			line     dbgen.CartLine
			existing dbgen.CartLine
		)
		err = pgx.ErrNoRows
		if lineKey.Valid {
			existing, err = q.GetCartLineByKey(ctx, dbgen.GetCartLineByKeyParams{CartID: id, LineKey: lineKey})
		}
		switch {
		case err == nil:
			if !db.UUIDEqual(existing.ProductID, productID) {
				return common.Conflict("lineKey %s is already used for another product", lineKey.String)
			}
			line, err = q.UpdateCartLineInput(ctx, dbgen.UpdateCartLineInputParams{
				ID:              existing.ID,
				ProductID:       productID,
				Quantity:        qty,
				UnitPrice:       price.amount,
				PriceOverridden: price.overridden,
				OverrideReason:  price.reason,
			})
			if err != nil {
				return common.Internal("unable to update cart line", err)
			}
		case db.IsNotFound(err):
			lines, err := q.ListCartLines(ctx, id)
			if err != nil {
				return common.Internal("unable to load cart lines", err)
			}
			if len(lines) >= maxLinesPerCart {
				return common.Validation("cart cannot hold more than %d lines", maxLinesPerCart)
			}
			lineNo, err := q.NextCartLineNo(ctx, id)
			if err != nil {
				return common.Internal("unable to allocate line number", err)
			}
			line, err = q.InsertCartLine(ctx, dbgen.InsertCartLineParams{
				CartID:          id,
				LineNo:          lineNo,
				LineKey:         lineKey,
				ProductID:       productID,
				Quantity:        qty,
				UnitPrice:       price.amount,
				PriceOverridden: price.overridden,
				OverrideReason:  price.reason,
			})
			if err != nil {
				if db.IsUniqueViolation(err) {
					return common.Conflict("cart line changed concurrently, retry")
				}
				return common.Internal("unable to insert cart line", err)
			}
		default:
			return common.Internal("unable to look up cart line", err)
		}
		if price.overridden {
			if err := recordOverride(record, c, line, product); err != nil {
				return err
			}
		}
		out, err = s.reprice(ctx, q, c, c.PricingAt.Time)
		return err
	})
	return out, err
}

// UpdateLine changes the quantity and/or unit price override of a line and reprices.
func (s *Service) UpdateLine(ctx context.Context, cartID, lineID string, in UpdateLineInput) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return Snapshot{}, err
	}
	if in.Quantity == nil && in.UnitPrice == nil {
		return Snapshot{}, common.Validation("quantity or unitPrice is required")
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	lID, err := parseID(lineID, "line")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.mutation(ctx, "update_line", func(q dbgen.Querier, record recorder) error {
		c, err := s.lockEditable(ctx, q, id)
		if err != nil {
			return err
		}
		line, err := s.lineOf(ctx, q, id, lID)
		if err != nil {
			return err
		}
		params := dbgen.UpdateCartLineInputParams{
			ID:              line.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			PriceOverridden: line.PriceOverridden,
			OverrideReason:  line.OverrideReason,
		}
		if in.Quantity != nil {
			qty, err := money.Quantity(*in.Quantity)
			if err != nil {
				return common.ValidationErr(err, "quantity must be positive with at most 3 decimals")
			}
			params.Quantity = qty
		}
		var product dbgen.Product
		if in.UnitPrice != nil {
			product, err = catalog.Product(ctx, q, line.ProductID)
			if err != nil {
				return err
			}
			price, err := resolveOverride(product, in.UnitPrice, in.PriceOverrideReason)
			if err != nil {
				return err
			}
			params.UnitPrice, params.PriceOverridden, params.OverrideReason = price.amount, price.overridden, price.reason
		}
		updated, err := q.UpdateCartLineInput(ctx, params)
		if err != nil {
			return common.Internal("unable to update cart line", err)
		}
		if in.UnitPrice != nil {
			if err := recordOverride(record, c, updated, product); err != nil {
				return err
			}
		}
		out, err = s.reprice(ctx, q, c, c.PricingAt.Time)
		return err
	})
	return out, err
}

// RemoveLine deletes a line and reprices.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	lID, err := parseID(lineID, "line")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.mutation(ctx, "remove_line", func(q dbgen.Querier, _ recorder) error {
		c, err := s.lockEditable(ctx, q, id)
		if err != nil {
			return err
		}
		if _, err := s.lineOf(ctx, q, id, lID); err != nil {
			return err
		}
		if err := q.DeleteCartLine(ctx, lID); err != nil {
			return common.Internal("unable to delete cart line", err)
		}
		out, err = s.reprice(ctx, q, c, c.PricingAt.Time)
		return err
	})
	return out, err
}

// Recalculate reprices from current catalog data, optionally moving pricingAt to now,
// and previews tender rounding without persisting it.
func (s *Service) Recalculate(ctx context.Context, cartID string, in RecalculateInput) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.mutation(ctx, "recalculate", func(q dbgen.Querier, _ recorder) error {
		c, err := s.lockEditable(ctx, q, id)
		if err != nil {
			return err
		}
		at := c.PricingAt.Time
		if in.RefreshPricingAt {
			at = s.now()
		}
		var summary pricing.Summary
		out, summary, err = s.price(ctx, q, c, at, "")
		if err != nil {
			return err
		}
		if tender := strings.TrimSpace(in.TenderType); tender != "" {
			preview, err := rounding.Resolve(ctx, q, c.StoreID, tender, summary.Gross)
			if err != nil {
				return err
			}
			out.RoundingPreview = NewRoundingView(preview)
		}
		return nil
	})
	return out, err
}

// Park suspends an editable cart under a reference code until the park TTL elapses.
func (s *Service) Park(ctx context.Context, cartID string, in ParkInput) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.mutation(ctx, "park", func(q dbgen.Querier, record recorder) error {
		c, err := s.lockEditable(ctx, q, id)
		if err != nil {
			return err
		}
		lines, err := q.ListCartLines(ctx, id)
		if err != nil {
			return common.Internal("unable to load cart lines", err)
		}
		if len(lines) == 0 {
			return common.Validation("an empty cart cannot be parked")
		}
		ref := parkReference()
		until := s.now().Add(s.parkTTL())
		c, err = q.UpdateCartStatus(ctx, dbgen.UpdateCartStatusParams{
			ID:              id,
			Status:          StatusParked,
			ParkedReference: db.Text(ref),
			ParkedUntil:     pgtype.Timestamptz{Time: until, Valid: true},
		})
		if err != nil {
			return common.Internal("unable to park cart", err)
		}
		if err := record(events.TopicCartParked, id, map[string]any{
			"parkedReference": ref,
			"parkedUntil":     until,
			"note":            strings.TrimSpace(in.Note),
		}); err != nil {
			return err
		}
		out = NewSnapshot(c, lines)
		return nil
	})
	return out, err
}

// Resume reopens a parked cart. A cart resumed after its deadline is marked EXPIRED.
func (s *Service) Resume(ctx context.Context, cartID string) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	var (
		out     Snapshot
		expired bool
	)
	err = s.mutation(ctx, "resume", func(q dbgen.Querier, _ recorder) error {
		c, err := q.GetCartForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "cart")
		}
		if c.Status != StatusParked {
			return common.Conflict("cart is %s, only parked carts can be resumed", c.Status)
		}
		if c.ParkedUntil.Valid && s.now().After(c.ParkedUntil.Time) {
			if _, err := q.UpdateCartStatus(ctx, dbgen.UpdateCartStatusParams{
				ID:              id,
				Status:          StatusExpired,
				ParkedReference: c.ParkedReference,
				ParkedUntil:     c.ParkedUntil,
			}); err != nil {
				return common.Internal("unable to expire cart", err)
			}
			expired = true
			return nil
		}
		c, err = q.UpdateCartStatus(ctx, dbgen.UpdateCartStatusParams{ID: id, Status: StatusOpen})
		if err != nil {
			return common.Internal("unable to resume cart", err)
		}
		out, _, err = s.price(ctx, q, c, c.PricingAt.Time, StatusOpen)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	if expired {
		obs.AddExpiredCarts(1)
		return Snapshot{}, common.Conflict("parked cart has expired")
	}
	return out, nil
}

// Cancel abandons a cart that has not been checked out.
func (s *Service) Cancel(ctx context.Context, cartID string) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	id, err := parseID(cartID, "cart")
	if err != nil {
		return Snapshot{}, err
	}
	var out Snapshot
	err = s.mutation(ctx, "cancel", func(q dbgen.Querier, record recorder) error {
		c, err := q.GetCartForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "cart")
		}
		switch c.Status {
		case StatusCheckedOut, StatusCancelled, StatusExpired:
			return common.Conflict("cart is %s and cannot be cancelled", c.Status)
		}
		c, err = q.UpdateCartStatus(ctx, dbgen.UpdateCartStatusParams{ID: id, Status: StatusCancelled})
		if err != nil {
			return common.Internal("unable to cancel cart", err)
		}
		if err := record(events.TopicCartCancelled, id, map[string]any{"cashierId": db.UUIDString(c.CashierID)}); err != nil {
			return err
		}
		lines, err := q.ListCartLines(ctx, id)
		if err != nil {
			return common.Internal("unable to load cart lines", err)
		}
		out = NewSnapshot(c, lines)
		return nil
	})
	return out, err
}

// ExpireParked marks every parked cart past its deadline as EXPIRED.
func (s *Service) ExpireParked(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var n int64
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		n, err = q.ExpireParkedCarts(ctx, pgtype.Timestamptz{Time: s.now(), Valid: true})
		return err
	})
	if err != nil {
		return 0, common.Internal("unable to expire parked carts", err)
	}
	if n > 0 {
		obs.AddExpiredCarts(n)
		s.Logger.Info().Int64("expired", n).Msg("parked carts expired")
	}
	return n, nil
}

func (s *Service) lockEditable(ctx context.Context, q dbgen.Querier, id pgtype.UUID) (dbgen.Cart, error) {
	c, err := q.GetCartForUpdate(ctx, id)
	if err != nil {
		return dbgen.Cart{}, notFoundOr(err, "cart")
	}
	if !Editable(c.Status) {
		return dbgen.Cart{}, common.Conflict("cart is %s and cannot be modified", c.Status)
	}
	return c, nil
}

func (s *Service) lineOf(ctx context.Context, q dbgen.Querier, cartID, lineID pgtype.UUID) (dbgen.CartLine, error) {
	line, err := q.GetCartLine(ctx, lineID)
	if err != nil {
		return dbgen.CartLine{}, notFoundOr(err, "cart line")
	}
	if !db.UUIDEqual(line.CartID, cartID) {
		return dbgen.CartLine{}, common.NotFound("cart line not found")
	}
	return line, nil
}

// reprice recomputes and persists the cart at the given pricing instant.
func (s *Service) reprice(ctx context.Context, q dbgen.Querier, c dbgen.Cart, at time.Time) (Snapshot, error) {
	out, _, err := s.price(ctx, q, c, at, "")
	return out, err
}

// price reprices c and persists it with status, or the status implied by its line count when empty.
func (s *Service) price(ctx context.Context, q dbgen.Querier, c dbgen.Cart, at time.Time, status string) (Snapshot, pricing.Summary, error) {
	lines, err := q.ListCartLines(ctx, c.ID)
	if err != nil {
		return Snapshot{}, pricing.Summary{}, common.Internal("unable to load cart lines", err)
	}
	summary, err := pricing.Price(ctx, q, pricing.Request{StoreID: c.StoreID, At: at, Lines: lines})
	if err != nil {
		return Snapshot{}, pricing.Summary{}, err
	}
	if status == "" {
		status = StatusFor(len(lines))
	}
	updated, err := pricing.Persist(ctx, q, c.ID, status, at, summary)
	if err != nil {
		return Snapshot{}, pricing.Summary{}, err
	}
	lines, err = q.ListCartLines(ctx, c.ID)
	if err != nil {
		return Snapshot{}, pricing.Summary{}, common.Internal("unable to load cart lines", err)
	}
	return NewSnapshot(updated, lines).withPricing(summary), summary, nil
}

type linePrice struct {
	amount     decimal.Decimal
	overridden bool
	reason     pgtype.Text
}

// resolveOverride validates a requested unit price. Catalog-priced lines store the
// base price as a placeholder; the pipeline re-resolves them on every reprice.
func resolveOverride(product dbgen.Product, unitPrice *decimal.Decimal, reason *string) (linePrice, error) {
	if unitPrice == nil {
		if product.OpenPrice {
			return linePrice{}, common.Validation("product %s is open-price and requires a unit price", product.Sku)
		}
		return linePrice{amount: product.BasePrice}, nil
	}
	if !product.OpenPrice {
		return linePrice{}, common.Validation("unit price override is not allowed for product %s", product.Sku)
	}
	amount, err := money.Normalize(*unitPrice)
	if err != nil {
		return linePrice{}, common.ValidationErr(err, "unit price must not be negative")
	}
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return linePrice{}, common.Validation("priceOverrideReason is required when overriding the unit price")
	}
	return linePrice{amount: amount, overridden: true, reason: db.Text(strings.TrimSpace(*reason))}, nil
}

func recordOverride(record recorder, c dbgen.Cart, line dbgen.CartLine, product dbgen.Product) error {
	return record(events.TopicCartPriceOverride, c.ID, map[string]any{
		"lineId":    db.UUIDString(line.ID),
		"productId": db.UUIDString(line.ProductID),
		"sku":       product.Sku,
		"unitPrice": money.Format(line.UnitPrice),
		"reason":    line.OverrideReason.String,
		"cashierId": db.UUIDString(c.CashierID),
	})
}

func parkReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PARK-" + strings.ToUpper(raw[:8])
}

func parseID(value, what string) (pgtype.UUID, error) {
	id, err := db.ParseUUID(strings.TrimSpace(value))
	if err != nil {
		return pgtype.UUID{}, common.ValidationErr(err, "invalid %s id", what)
	}
	return id, nil
}

func notFoundOr(err error, what string) error {
	if db.IsNotFound(err) {
		return common.NotFound("%s not found", what)
	}
	return common.Internal("unable to load "+what, err)
}
