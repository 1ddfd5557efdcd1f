// Package tax computes net, tax and gross amounts for priced lines.
package tax

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
)

// Mode states whether a price already contains tax.
type Mode string

const (
	ModeInclusive Mode = "INCLUSIVE"
	ModeExclusive Mode = "EXCLUSIVE"
)

// Group is the rate configuration a product belongs to.
type Group struct {
	Code        string
	RatePercent decimal.Decimal
	ZeroRated   bool
}

// Rule is the store-level treatment of a tax group.
type Rule struct {
	Mode   Mode
	Exempt bool
}

// Result is the tax breakdown of one line.
type Result struct {
	Net         decimal.Decimal
	Tax         decimal.Decimal
	Gross       decimal.Decimal
	RatePercent decimal.Decimal
	Mode        Mode
	Exempt      bool
	ZeroRated   bool
}

// Calculate splits amount into net, tax and gross under group and rule.
func Calculate(amount decimal.Decimal, group Group, rule Rule) (Result, error) {
	lineAmount, err := money.Normalize(amount)
	if err != nil {
		return Result{}, common.ValidationErr(err, "line amount must not be negative")
	}
	rate, err := money.Rate(group.RatePercent)
	if err != nil {
		return Result{}, common.ValidationErr(err, "tax group %s has an invalid rate", group.Code)
	}
	res := Result{
		RatePercent: rate,
		Mode:        rule.Mode,
		ZeroRated:   group.ZeroRated,
		Exempt:      rule.Exempt || group.ZeroRated || rate.IsZero(),
	}
	if res.Exempt {
		res.Net = lineAmount
		res.Gross = lineAmount
		res.Tax = decimal.Zero
		return res, nil
	}
	switch rule.Mode {
	case ModeExclusive:
		res.Net = lineAmount
		res.Tax = money.PercentOf(lineAmount, rate)
		res.Gross = res.Net.Add(res.Tax)
	case ModeInclusive:
		divisor := decimal.NewFromInt(1).Add(rate.DivRound(money.Hundred(), money.DivisionScale))
		res.Gross = lineAmount
		res.Net = money.Round(lineAmount.DivRound(divisor, money.DivisionScale))
		res.Tax = res.Gross.Sub(res.Net)
	default:
		return Result{}, common.Validation("unsupported tax mode %q", rule.Mode)
	}
	return res, nil
}

// Queries is the read surface needed to resolve a product's tax treatment.
type Queries interface {
	GetTaxGroup(ctx context.Context, id pgtype.UUID) (dbgen.TaxGroup, error)
	GetActiveStoreTaxRule(ctx context.Context, arg dbgen.GetActiveStoreTaxRuleParams) (dbgen.StoreTaxRule, error)
}

// Treatment is a resolved group plus rule pair.
type Treatment struct {
	Group Group
	Rule  Rule
}

// Resolve loads the tax group of a product and the store rule effective at.
func Resolve(ctx context.Context, q Queries, storeID pgtype.UUID, product dbgen.Product, at time.Time) (Treatment, error) {
	if !product.TaxGroupID.Valid {
		return Treatment{}, common.Validation("product %s has no tax group", product.Sku)
	}
	group, err := q.GetTaxGroup(ctx, product.TaxGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Treatment{}, common.Validation("tax group for product %s not found", product.Sku)
		}
		return Treatment{}, common.Internal("unable to load tax group", err)
	}
	rule, err := q.GetActiveStoreTaxRule(ctx, dbgen.GetActiveStoreTaxRuleParams{
		StoreID:    storeID,
		TaxGroupID: group.ID,
		At:         pgtype.Timestamptz{Time: at, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Treatment{}, common.Validation("no active tax rule for tax group %s", group.Code)
		}
		return Treatment{}, common.Internal("unable to load store tax rule", err)
	}
	return Treatment{
		Group: Group{Code: group.Code, RatePercent: group.RatePercent, ZeroRated: group.ZeroRated},
		Rule:  Rule{Mode: Mode(rule.TaxMode), Exempt: rule.Exempt},
	}, nil
}

// Cache memoizes treatments per tax group within one pricing pass.
type Cache struct {
	Q       Queries
	StoreID pgtype.UUID
	At      time.Time
	seen    map[[16]byte]Treatment
}

// For returns the treatment of product, loading it at most once per group.
func (c *Cache) For(ctx context.Context, product dbgen.Product) (Treatment, error) {
	if c.seen == nil {
		c.seen = map[[16]byte]Treatment{}
	}
	if product.TaxGroupID.Valid {
		if t, ok := c.seen[product.TaxGroupID.Bytes]; ok {
			return t, nil
		}
	}
	t, err := Resolve(ctx, c.Q, c.StoreID, product, c.At)
	if err != nil {
		return Treatment{}, err
	}
	c.seen[product.TaxGroupID.Bytes] = t
	return t, nil
}
