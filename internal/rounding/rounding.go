// Package rounding applies tender-specific cash rounding to payable totals.
package rounding

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
)

// Method selects the direction used when snapping to an increment.
type Method string

const (
	MethodNearest Method = "NEAREST"
	MethodUp      Method = "UP"
	MethodDown    Method = "DOWN"
)

// Policy is an active rounding configuration for one tender type.
type Policy struct {
	TenderType string
	Method     Method
	Increment  decimal.Decimal
}

// Result describes the outcome of rounding a payable amount.
type Result struct {
	Applied    bool
	TenderType string
	Method     Method
	Increment  decimal.Decimal
	Original   decimal.Decimal
	Rounded    decimal.Decimal
	Adjustment decimal.Decimal
}

// NotApplied returns a result that leaves amount untouched.
func NotApplied(amount decimal.Decimal, tenderType string) Result {
	return Result{
		TenderType: tenderType,
		Original:   amount,
		Rounded:    amount,
		Adjustment: decimal.Zero,
	}
}

// Apply snaps amount to the policy increment. A nil policy leaves it untouched.
func Apply(amount decimal.Decimal, policy *Policy) (Result, error) {
	normalized, err := money.Normalize(amount)
	if err != nil {
		return Result{}, common.ValidationErr(err, "payable amount must not be negative")
	}
	if policy == nil {
		return NotApplied(normalized, ""), nil
	}
	if !policy.Increment.IsPositive() {
		return Result{}, common.Validation("rounding increment must be greater than zero for tender %s", policy.TenderType)
	}
	steps, rem := normalized.QuoRem(policy.Increment, 0)
	switch policy.Method {
	case MethodDown:
	case MethodUp:
		if rem.IsPositive() {
			steps = steps.Add(decimal.NewFromInt(1))
		}
	case MethodNearest:
		if rem.Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(policy.Increment) {
			steps = steps.Add(decimal.NewFromInt(1))
		}
	default:
		return Result{}, common.Validation("unsupported rounding method %q", policy.Method)
	}
	rounded := money.Round(steps.Mul(policy.Increment))
	return Result{
		Applied:    true,
		TenderType: policy.TenderType,
		Method:     policy.Method,
		Increment:  policy.Increment,
		Original:   normalized,
		Rounded:    rounded,
		Adjustment: rounded.Sub(normalized),
	}, nil
}

// PolicyQueries is the read surface needed to resolve a policy.
type PolicyQueries interface {
	GetActiveRoundingPolicy(ctx context.Context, arg dbgen.GetActiveRoundingPolicyParams) (dbgen.RoundingPolicy, error)
}

// Resolve applies the active policy of storeID for tenderType, if any.
func Resolve(ctx context.Context, q PolicyQueries, storeID pgtype.UUID, tenderType string, amount decimal.Decimal) (Result, error) {
	tenderType = strings.ToUpper(strings.TrimSpace(tenderType))
	if tenderType == "" {
		return Apply(amount, nil)
	}
	row, err := q.GetActiveRoundingPolicy(ctx, dbgen.GetActiveRoundingPolicyParams{StoreID: storeID, TenderType: tenderType})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			res, applyErr := Apply(amount, nil)
			res.TenderType = tenderType
			return res, applyErr
		}
		return Result{}, common.Internal("unable to load rounding policy", err)
	}
	return Apply(amount, &Policy{
		TenderType: row.TenderType,
		Method:     Method(row.RoundingMethod),
		Increment:  row.IncrementAmount,
	})
}
