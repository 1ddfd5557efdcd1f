package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// EvaluateLineInput is one requested line.
type EvaluateLineInput struct {
	ProductID string           `json:"productId" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

// EvaluateInput is the body of POST /promotions/evaluate.
type EvaluateInput struct {
	StoreID string              `json:"storeId" validate:"required,uuid"`
	At      *time.Time          `json:"at,omitempty"`
	Lines   []EvaluateLineInput `json:"lines" validate:"required,min=1,max=200,dive"`
}

// LineView is the API rendering of a line state.
type LineView struct {
	LineNumber          int    `json:"lineNumber"`
	ProductID           string `json:"productId"`
	Sku                 string `json:"sku"`
	Quantity            string `json:"quantity"`
	UnitPrice           string `json:"unitPrice"`
	SubtotalBefore      string `json:"subtotalBefore"`
	Discount            string `json:"discount"`
	SubtotalAfter       string `json:"subtotalAfter"`
	DiscountedUnitPrice string `json:"discountedUnitPrice"`
}

// AppliedView is the API rendering of the winning promotion.
type AppliedView struct {
	ID            int64    `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Priority      int      `json:"priority"`
	TotalDiscount string   `json:"totalDiscount"`
	Explanations  []string `json:"explanations"`
}

// EvaluateOutput is the response of POST /promotions/evaluate.
type EvaluateOutput struct {
	StoreID          string       `json:"storeId"`
	At               time.Time    `json:"at"`
	Lines            []LineView   `json:"lines"`
	SubtotalBefore   string       `json:"subtotalBefore"`
	TotalDiscount    string       `json:"totalDiscount"`
	SubtotalAfter    string       `json:"subtotalAfter"`
	AppliedPromotion *AppliedView `json:"appliedPromotion"`
}

// View renders an outcome for API responses.
func View(storeID string, at time.Time, out Outcome) EvaluateOutput {
	res := EvaluateOutput{
		StoreID:        storeID,
		At:             at,
		Lines:          make([]LineView, 0, len(out.Lines)),
		SubtotalBefore: money.Format(out.SubtotalBefore),
		TotalDiscount:  money.Format(out.TotalDiscount),
		SubtotalAfter:  money.Format(out.SubtotalAfter),
	}
	for _, l := range out.Lines {
		res.Lines = append(res.Lines, LineView{
			LineNumber:          l.LineNumber,
			ProductID:           l.ProductID.String(),
			Sku:                 l.Sku,
			Quantity:            money.FormatQuantity(l.Quantity),
			UnitPrice:           money.Format(l.UnitPrice),
			SubtotalBefore:      money.Format(l.SubtotalBefore),
			Discount:            money.Format(l.Discount),
			SubtotalAfter:       money.Format(l.SubtotalAfter),
			DiscountedUnitPrice: money.Format(l.DiscountedUnitPrice()),
		})
	}
	if out.Applied != nil {
		res.AppliedPromotion = &AppliedView{
			ID:            out.Applied.PromotionID,
			Code:          out.Applied.Code,
			Name:          out.Applied.Name,
			Priority:      out.Applied.Priority,
			TotalDiscount: money.Format(out.Applied.TotalDiscount),
			Explanations:  out.Applied.Explanations,
		}
	}
	return res
}

// Service evaluates promotions for read-only previews.
type Service struct {
	DB     db.TxRunner
	Cache  *catalog.Cache
	Now    func() time.Time
	Logger zerolog.Logger
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Definitions returns the merchant's active promotions, served from cache when available.
// Cached definitions are only used for previews; checkout always reads the database.
func (s *Service) Definitions(ctx context.Context, q Queries, merchantID pgtype.UUID) ([]Promotion, error) {
	key := "promotions:merchant:" + db.UUIDString(merchantID)
	var cached []Promotion
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("promotion cache read failed")
	} else if ok {
		return cached, nil
	}
	promos, err := Load(ctx, q, merchantID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, key, promos); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("promotion cache write failed")
	}
	return promos, nil
}

// Evaluate prices the requested lines and selects the winning promotion without persisting anything.
func (s *Service) Evaluate(ctx context.Context, in EvaluateInput) (EvaluateOutput, error) {
	if s == nil || s.DB == nil {
		return EvaluateOutput{}, common.Internal("promotion service not configured", nil)
	}
	if err := common.ValidateStruct(in); err != nil {
		return EvaluateOutput{}, err
	}
	storeID, err := db.ParseUUID(in.StoreID)
	if err != nil {
		return EvaluateOutput{}, common.ValidationErr(err, "invalid store id")
	}
	at := s.now()
	if in.At != nil {
		at = in.At.UTC()
	}
	var out Outcome
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		store, err := q.GetStore(ctx, storeID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("store not found")
			}
			return common.Internal("unable to load store", err)
		}
		lines := make([]Line, 0, len(in.Lines))
		for i, l := range in.Lines {
			line, err := resolveLine(ctx, q, storeID, at, i+1, l)
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}
		promos, err := s.Definitions(ctx, q, store.MerchantID)
		if err != nil {
			return err
		}
		out, err = Evaluate(lines, promos, at)
		return err
	})
	if err != nil {
		return EvaluateOutput{}, err
	}
	if out.Applied != nil {
		obs.IncPromotionEvaluation("applied")
	} else {
		obs.IncPromotionEvaluation("none")
	}
	return View(in.StoreID, at, out), nil
}

func resolveLine(ctx context.Context, q dbgen.Querier, storeID pgtype.UUID, at time.Time, n int, in EvaluateLineInput) (Line, error) {
	productID, err := db.ParseUUID(in.ProductID)
	if err != nil {
		return Line{}, common.ValidationErr(err, "line %d: invalid product id", n)
	}
	qty, err := money.Quantity(in.Quantity)
	if err != nil {
		return Line{}, common.ValidationErr(err, "line %d: quantity must be positive with at most 3 decimals", n)
	}
	product, err := catalog.Product(ctx, q, productID)
	if err != nil {
		return Line{}, err
	}
	var price decimal.Decimal
	if in.UnitPrice != nil {
		price, err = money.Normalize(*in.UnitPrice)
		if err != nil {
			return Line{}, common.ValidationErr(err, "line %d: unit price must not be negative", n)
		}
	} else {
		price, _, err = catalog.PriceAt(ctx, q, storeID, product, at)
		if err != nil {
			return Line{}, err
		}
	}
	return Line{
		ProductID: uuid.UUID(product.ID.Bytes),
		Sku:       product.Sku,
		Quantity:  qty,
		UnitPrice: price,
	}, nil
}
