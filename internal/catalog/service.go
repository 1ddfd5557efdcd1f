package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/money"
)

// Quote is the resolved price of a product at a store and instant.
type Quote struct {
	ProductID  string    `json:"productId"`
	StoreID    string    `json:"storeId"`
	Sku        string    `json:"sku"`
	Name       string    `json:"name"`
	UnitPrice  string    `json:"unitPrice"`
	Source     string    `json:"source"`
	OpenPrice  bool      `json:"openPrice"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Service exposes the price resolver to read-only callers, caching quotes per minute.
type Service struct {
	DB     db.TxRunner
	Cache  *Cache
	Now    func() time.Time
	Logger zerolog.Logger
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Quote resolves the unit price of productID at storeID for the instant at (now when zero).
func (s *Service) Quote(ctx context.Context, storeID, productID string, at time.Time) (Quote, error) {
	if s == nil || s.DB == nil {
		return Quote{}, common.Internal("catalog service not configured", nil)
	}
	sID, err := db.ParseUUID(storeID)
	if err != nil {
		return Quote{}, common.ValidationErr(err, "invalid store id")
	}
	pID, err := db.ParseUUID(productID)
	if err != nil {
		return Quote{}, common.ValidationErr(err, "invalid product id")
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC().Truncate(time.Minute)
	key := fmt.Sprintf("catalog:quote:%s:%s:%d", storeID, productID, at.Unix())
	var cached Quote
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	} else if ok {
		return cached, nil
	}
	var quote Quote
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		if _, err := q.GetStore(ctx, sID); err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("store not found")
			}
			return common.Internal("unable to load store", err)
		}
		product, err := Product(ctx, q, pID)
		if err != nil {
			return err
		}
		price, source, err := PriceAt(ctx, q, sID, product, at)
		if err != nil {
			return err
		}
		quote = Quote{
			ProductID:  db.UUIDString(product.ID),
			StoreID:    db.UUIDString(sID),
			Sku:        product.Sku,
			Name:       product.Name,
			UnitPrice:  money.Format(price),
			Source:     string(source),
			OpenPrice:  product.OpenPrice,
			ResolvedAt: at,
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	if err := s.Cache.SetJSON(ctx, key, quote); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return quote, nil
}
