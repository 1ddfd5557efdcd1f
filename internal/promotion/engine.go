package promotion

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/money"
)

// RuleType identifies the variant of a promotion rule.
type RuleType string

const (
	RuleProductPercentage RuleType = "PRODUCT_PERCENTAGE"
	RuleCartFixed         RuleType = "CART_FIXED"
)

// Rule captures one discount rule of a promotion.
type Rule struct {
	ID              int64
	Type            RuleType
	TargetProductID uuid.UUID
	Percent         *decimal.Decimal
	MinQuantity     *decimal.Decimal
	FixedAmount     *decimal.Decimal
	MinSubtotal     *decimal.Decimal
	Active          bool
}

// Window is an interval during which a promotion may be evaluated. Nil bounds are open.
type Window struct {
	StartsAt *time.Time
	EndsAt   *time.Time
	Active   bool
}

// Covers reports whether the window is active at the given instant.
func (w Window) Covers(at time.Time) bool {
	if !w.Active {
		return false
	}
	if w.StartsAt != nil && at.Before(*w.StartsAt) {
		return false
	}
	if w.EndsAt != nil && at.After(*w.EndsAt) {
		return false
	}
	return true
}

// Promotion is a candidate discount with its windows and rules.
type Promotion struct {
	ID       int64
	Code     string
	Name     string
	Priority int
	Windows  []Window
	Rules    []Rule
}

// CandidateAt reports whether p has a window covering at and at least one active rule.
func (p Promotion) CandidateAt(at time.Time) bool {
	covered := slices.ContainsFunc(p.Windows, func(w Window) bool { return w.Covers(at) })
	if !covered {
		return false
	}
	return slices.ContainsFunc(p.Rules, func(r Rule) bool { return r.Active })
}

// Line is a priced input line.
type Line struct {
	ProductID uuid.UUID
	Sku       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// LineState tracks the discount applied to one line.
type LineState struct {
	LineNumber     int
	ProductID      uuid.UUID
	Sku            string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	SubtotalBefore decimal.Decimal
	Discount       decimal.Decimal
	SubtotalAfter  decimal.Decimal
}

// DiscountedUnitPrice is the effective unit price after discount.
func (l LineState) DiscountedUnitPrice() decimal.Decimal {
	if !l.Quantity.IsPositive() {
		return l.UnitPrice
	}
	return money.Round(l.SubtotalAfter.DivRound(l.Quantity, money.DivisionScale))
}

// apply clamps requested to [0, SubtotalAfter], books it and returns what was applied.
func (l *LineState) apply(requested decimal.Decimal) decimal.Decimal {
	if !requested.IsPositive() || !l.SubtotalAfter.IsPositive() {
		return decimal.Zero
	}
	applied := money.Min(requested, l.SubtotalAfter)
	l.Discount = l.Discount.Add(applied)
	l.SubtotalAfter = l.SubtotalAfter.Sub(applied)
	return applied
}

// Applied describes the winning promotion.
type Applied struct {
	PromotionID   int64
	Code          string
	Name          string
	Priority      int
	TotalDiscount decimal.Decimal
	Explanations  []string
}

// Outcome is the result of evaluating a line set.
type Outcome struct {
	Lines          []LineState
	SubtotalBefore decimal.Decimal
	TotalDiscount  decimal.Decimal
	SubtotalAfter  decimal.Decimal
	Applied        *Applied
}

// BaseLines builds undiscounted line states.
func BaseLines(lines []Line) []LineState {
	out := make([]LineState, 0, len(lines))
	for i, l := range lines {
		subtotal := money.Extend(l.Quantity, l.UnitPrice)
		out = append(out, LineState{
			LineNumber:     i + 1,
			ProductID:      l.ProductID,
			Sku:            l.Sku,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			SubtotalBefore: subtotal,
			Discount:       decimal.Zero,
			SubtotalAfter:  subtotal,
		})
	}
	return out
}

type candidate struct {
	promo        Promotion
	lines        []LineState
	discount     decimal.Decimal
	explanations []string
}

// Evaluate selects at most one winning promotion for lines at the given instant.
// Winners are ordered by priority desc, total discount desc, then id asc.
func Evaluate(lines []Line, promos []Promotion, at time.Time) (Outcome, error) {
	base := BaseLines(lines)
	var winner *candidate
	for _, p := range promos {
		if !p.CandidateAt(at) {
			continue
		}
		c, err := evaluateCandidate(p, base)
		if err != nil {
			return Outcome{}, err
		}
		if !c.discount.IsPositive() {
			continue
		}
		if winner == nil || better(c, winner) {
			winner = c
		}
	}
	if winner == nil {
		return summarize(base, nil), nil
	}
	return summarize(winner.lines, &Applied{
		PromotionID:   winner.promo.ID,
		Code:          winner.promo.Code,
		Name:          winner.promo.Name,
		Priority:      winner.promo.Priority,
		TotalDiscount: winner.discount,
		Explanations:  winner.explanations,
	}), nil
}

func better(a, b *candidate) bool {
	if a.promo.Priority != b.promo.Priority {
		return a.promo.Priority > b.promo.Priority
	}
	if c := a.discount.Cmp(b.discount); c != 0 {
		return c > 0
	}
	return a.promo.ID < b.promo.ID
}

func summarize(lines []LineState, applied *Applied) Outcome {
	out := Outcome{Lines: lines, Applied: applied, SubtotalBefore: decimal.Zero, TotalDiscount: decimal.Zero, SubtotalAfter: decimal.Zero}
	for _, l := range lines {
		out.SubtotalBefore = out.SubtotalBefore.Add(l.SubtotalBefore)
		out.TotalDiscount = out.TotalDiscount.Add(l.Discount)
		out.SubtotalAfter = out.SubtotalAfter.Add(l.SubtotalAfter)
	}
	return out
}

func evaluateCandidate(p Promotion, base []LineState) (*candidate, error) {
	c := &candidate{promo: p, lines: slices.Clone(base)}
	rules := slices.Clone(p.Rules)
	slices.SortFunc(rules, func(a, b Rule) int { return cmp.Compare(a.ID, b.ID) })
	for _, r := range rules {
		if !r.Active {
			continue
		}
		var (
			explanation string
			err         error
		)
		switch r.Type {
		case RuleProductPercentage:
			explanation, err = applyProductPercentage(r, c.lines)
		case RuleCartFixed:
			explanation, err = applyCartFixed(r, c.lines)
		default:
			return nil, common.Validation("promotion %s has unsupported rule type %q", p.Code, r.Type)
		}
		if err != nil {
			return nil, err
		}
		if explanation != "" {
			c.explanations = append(c.explanations, explanation)
		}
	}
	before, after := decimal.Zero, decimal.Zero
	for _, l := range c.lines {
		before = before.Add(l.SubtotalBefore)
		after = after.Add(l.SubtotalAfter)
	}
	c.discount = before.Sub(after)
	return c, nil
}

func applyProductPercentage(r Rule, lines []LineState) (string, error) {
	if r.Percent == nil || !r.Percent.IsPositive() || r.Percent.GreaterThan(money.Hundred()) {
		return "", common.Validation("promotion rule %d percent must be greater than 0 and at most 100", r.ID)
	}
	pct := r.Percent.Round(money.RateScale)
	if r.MinQuantity != nil && !r.MinQuantity.IsPositive() {
		return "", common.Validation("promotion rule %d minimum quantity must be positive", r.ID)
	}
	if r.TargetProductID == uuid.Nil {
		return "", common.Validation("promotion rule %d has no target product", r.ID)
	}
	total := decimal.Zero
	sku := ""
	for i := range lines {
		l := &lines[i]
		if l.ProductID != r.TargetProductID {
			continue
		}
		if r.MinQuantity != nil && l.Quantity.LessThan(*r.MinQuantity) {
			continue
		}
		total = total.Add(l.apply(money.PercentOf(l.SubtotalAfter, pct)))
		sku = l.Sku
	}
	if !total.IsPositive() {
		return "", nil
	}
	return fmt.Sprintf("Applied %s%% product promo on %s for %s", money.FormatRate(pct), sku, money.Format(total)), nil
}

func applyCartFixed(r Rule, lines []LineState) (string, error) {
	if r.FixedAmount == nil || !r.FixedAmount.IsPositive() {
		return "", common.Validation("promotion rule %d fixed amount must be positive", r.ID)
	}
	minSubtotal := decimal.Zero
	if r.MinSubtotal != nil {
		if r.MinSubtotal.IsNegative() {
			return "", common.Validation("promotion rule %d minimum subtotal must not be negative", r.ID)
		}
		minSubtotal = money.Round(*r.MinSubtotal)
	}
	current := decimal.Zero
	for _, l := range lines {
		current = current.Add(l.SubtotalAfter)
	}
	if current.LessThan(minSubtotal) || !current.IsPositive() {
		return "", nil
	}
	bounded := money.Min(money.Round(*r.FixedAmount), current)
	applied := distribute(bounded, current, lines)
	if !applied.IsPositive() {
		return "", nil
	}
	return fmt.Sprintf("Applied fixed cart promo %s with minimum subtotal %s", money.Format(applied), money.Format(minSubtotal)), nil
}

// distribute spreads amount over lines proportionally to their subtotal after
// discount. The last line absorbs the rounding remainder.
func distribute(amount, totalBase decimal.Decimal, lines []LineState) decimal.Decimal {
	if len(lines) == 1 {
		return lines[0].apply(amount)
	}
	remaining := amount
	applied := decimal.Zero
	for i := range lines {
		l := &lines[i]
		if !remaining.IsPositive() {
			break
		}
		share := remaining
		if i < len(lines)-1 {
			ratio := l.SubtotalAfter.DivRound(totalBase, money.RatioScale)
			share = money.Min(money.Round(amount.Mul(ratio)), remaining)
		}
		got := l.apply(share)
		remaining = remaining.Sub(got)
		applied = applied.Add(got)
	}
	// clamping on the last line can leave a cent behind; sweep it backwards
	for i := len(lines) - 1; i >= 0 && remaining.IsPositive(); i-- {
		got := lines[i].apply(remaining)
		remaining = remaining.Sub(got)
		applied = applied.Add(got)
	}
	return applied
}
