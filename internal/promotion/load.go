// Package promotion selects at most one winning promotion for a set of priced
// lines and distributes its discount across them.
package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// Queries is the read surface used to load promotion definitions.
type Queries interface {
	ListActivePromotionsByMerchant(ctx context.Context, merchantID pgtype.UUID) ([]dbgen.Promotion, error)
	ListPromotionRulesByPromotionIDs(ctx context.Context, ids []int64) ([]dbgen.PromotionRule, error)
	ListPromotionWindowsByPromotionIDs(ctx context.Context, ids []int64) ([]dbgen.PromotionWindow, error)
}

// Load returns the active promotions of a merchant with their windows and rules.
func Load(ctx context.Context, q Queries, merchantID pgtype.UUID) ([]Promotion, error) {
	rows, err := q.ListActivePromotionsByMerchant(ctx, merchantID)
	if err != nil {
		return nil, common.Internal("unable to load promotions", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(rows))
	byID := make(map[int64]*Promotion, len(rows))
	out := make([]Promotion, len(rows))
	for i, row := range rows {
		ids = append(ids, row.ID)
		out[i] = Promotion{ID: row.ID, Code: row.Code, Name: row.Name, Priority: int(row.Priority)}
		byID[row.ID] = &out[i]
	}
	windows, err := q.ListPromotionWindowsByPromotionIDs(ctx, ids)
	if err != nil {
		return nil, common.Internal("unable to load promotion windows", err)
	}
	for _, w := range windows {
		if p, ok := byID[w.PromotionID]; ok {
			p.Windows = append(p.Windows, Window{
				StartsAt: timePtr(w.StartsAt),
				EndsAt:   timePtr(w.EndsAt),
				Active:   w.Active,
			})
		}
	}
	rules, err := q.ListPromotionRulesByPromotionIDs(ctx, ids)
	if err != nil {
		return nil, common.Internal("unable to load promotion rules", err)
	}
	for _, r := range rules {
		if p, ok := byID[r.PromotionID]; ok {
			rule := Rule{
				ID:          r.ID,
				Type:        RuleType(r.RuleType),
				Percent:     decimalPtr(r.PercentValue),
				MinQuantity: decimalPtr(r.MinQuantity),
				FixedAmount: decimalPtr(r.FixedAmount),
				MinSubtotal: decimalPtr(r.MinSubtotal),
				Active:      r.Active,
			}
			if r.TargetProductID.Valid {
				rule.TargetProductID = uuid.UUID(r.TargetProductID.Bytes)
			}
			p.Rules = append(p.Rules, rule)
		}
	}
	return out, nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func decimalPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
