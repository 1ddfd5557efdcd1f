// Package payment records tender breakdowns for sales and drives payment status transitions.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
)

// Tender types.
const (
	TenderCash        = "CASH"
	TenderCard        = "CARD"
	TenderVoucher     = "VOUCHER"
	TenderStoreCredit = "STORE_CREDIT"
	TenderOther       = "OTHER"
)

const maxReferenceLength = 120

var tenders = map[string]struct{}{
	TenderCash:        {},
	TenderCard:        {},
	TenderVoucher:     {},
	TenderStoreCredit: {},
	TenderOther:       {},
}

var (
	// ErrUnderpaid is returned when the tendered total is below the payable amount.
	ErrUnderpaid = errors.New("tendered amount is below payable")
	// ErrChangeWithoutCash is returned when change exceeds what was tendered in cash.
	ErrChangeWithoutCash = errors.New("change can only be returned in cash")
)

// AllocationInput is one tender handed over by the customer.
type AllocationInput struct {
	TenderType string          `json:"tenderType" validate:"required,max=40"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  *string         `json:"reference,omitempty" validate:"omitempty,max=120"`
}

// Allocation is a validated tender with its share of the change.
type Allocation struct {
	Seq        int32
	TenderType string
	Amount     decimal.Decimal
	Applied    decimal.Decimal
	Change     decimal.Decimal
	Reference  pgtype.Text
}

// Breakdown is the settled tender split of a payable amount.
type Breakdown struct {
	Payable     decimal.Decimal
	Allocated   decimal.Decimal
	Change      decimal.Decimal
	Allocations []Allocation
}

// NormalizeTender trims and upper-cases a tender type and checks it is known.
func NormalizeTender(tender string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(tender))
	if _, ok := tenders[t]; !ok {
		return "", common.Validation("unsupported tender type %q", tender)
	}
	return t, nil
}

// RoundingTender picks the tender whose rounding policy applies to the payable:
// cash when any cash was tendered, otherwise the first tender.
func RoundingTender(in []AllocationInput) string {
	first := ""
	for i, a := range in {
		t := strings.ToUpper(strings.TrimSpace(a.TenderType))
		if t == TenderCash {
			return TenderCash
		}
		if i == 0 {
			first = t
		}
	}
	return first
}

// Settle validates the tenders against payable and assigns change to cash
// allocations from the last one backwards.
func Settle(in []AllocationInput, payable decimal.Decimal) (Breakdown, error) {
	if len(in) == 0 {
		return Breakdown{}, common.Validation("at least one payment allocation is required")
	}
	out := Breakdown{Payable: payable, Allocations: make([]Allocation, 0, len(in))}
	cash := decimal.Zero
	for i, a := range in {
		tender, err := NormalizeTender(a.TenderType)
		if err != nil {
			return Breakdown{}, err
		}
		if !a.Amount.IsPositive() {
			return Breakdown{}, common.Validation("payment allocation %d amount must be positive", i+1)
		}
		if !a.Amount.Equal(a.Amount.Truncate(money.Scale)) {
			return Breakdown{}, common.Validation("payment allocation %d amount must have at most 2 decimals", i+1)
		}
		alloc := Allocation{Seq: int32(i + 1), TenderType: tender, Amount: a.Amount, Applied: a.Amount, Change: decimal.Zero}
		if a.Reference != nil {
			ref := strings.TrimSpace(*a.Reference)
			if len(ref) > maxReferenceLength {
				return Breakdown{}, common.Validation("payment allocation %d reference is too long", i+1)
			}
			if ref != "" {
				alloc.Reference = db.Text(ref)
			}
		}
		if tender == TenderCash {
			cash = cash.Add(a.Amount)
		}
		out.Allocated = out.Allocated.Add(a.Amount)
		out.Allocations = append(out.Allocations, alloc)
	}
	if out.Allocated.LessThan(payable) {
		return Breakdown{}, common.ValidationErr(ErrUnderpaid, "tendered %s is below payable %s", money.Format(out.Allocated), money.Format(payable))
	}
	out.Change = out.Allocated.Sub(payable)
	if out.Change.GreaterThan(cash) {
		return Breakdown{}, common.ValidationErr(ErrChangeWithoutCash, "change %s exceeds cash tendered %s", money.Format(out.Change), money.Format(cash))
	}
	remaining := out.Change
	for i := len(out.Allocations) - 1; i >= 0 && remaining.IsPositive(); i-- {
		a := &out.Allocations[i]
		if a.TenderType != TenderCash {
			continue
		}
		share := money.Min(a.Amount, remaining)
		a.Change = share
		a.Applied = a.Amount.Sub(share)
		remaining = remaining.Sub(share)
	}
	return out, nil
}

// Record persists a captured payment for saleID with its allocations and the
// initial transition.
func Record(ctx context.Context, q dbgen.Querier, saleID pgtype.UUID, b Breakdown, at time.Time) (dbgen.Payment, []dbgen.PaymentAllocation, error) {
	p, err := q.InsertPayment(ctx, dbgen.InsertPaymentParams{
		SaleID:         saleID,
		Status:         StatusCaptured,
		TotalPayable:   b.Payable,
		TotalAllocated: b.Allocated,
		ChangeAmount:   b.Change,
		CapturedAt:     pgtype.Timestamptz{Time: at, Valid: true},
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return dbgen.Payment{}, nil, common.Conflict("sale already has a payment")
		}
		return dbgen.Payment{}, nil, common.Internal("unable to record payment", err)
	}
	rows := make([]dbgen.PaymentAllocation, 0, len(b.Allocations))
	for _, a := range b.Allocations {
		row, err := q.InsertPaymentAllocation(ctx, dbgen.InsertPaymentAllocationParams{
			PaymentID:     p.ID,
			Seq:           a.Seq,
			TenderType:    a.TenderType,
			Amount:        a.Amount,
			AppliedAmount: a.Applied,
			ChangeAmount:  a.Change,
			Reference:     a.Reference,
		})
		if err != nil {
			return dbgen.Payment{}, nil, common.Internal(fmt.Sprintf("unable to record payment allocation %d", a.Seq), err)
		}
		rows = append(rows, row)
	}
	if _, err := q.InsertPaymentTransition(ctx, dbgen.InsertPaymentTransitionParams{
		PaymentID: p.ID,
		Action:    ActionCapture,
		ToStatus:  StatusCaptured,
		Note:      db.Text("captured at checkout"),
	}); err != nil {
		return dbgen.Payment{}, nil, common.Internal("unable to record payment transition", err)
	}
	return p, rows, nil
}
