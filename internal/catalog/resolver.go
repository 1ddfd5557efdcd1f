// Package catalog resolves products and their effective store prices.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// PriceSource tells where a resolved unit price came from.
type PriceSource string

const (
	SourceStorePrice PriceSource = "STORE_PRICE"
	SourceBasePrice  PriceSource = "BASE_PRICE"
	SourceOverride   PriceSource = "OVERRIDE"
)

// Queries is the read surface of the price resolver.
type Queries interface {
	GetProduct(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
	GetStorePriceAt(ctx context.Context, arg dbgen.GetStorePriceAtParams) (decimal.Decimal, error)
}

// Product loads an active product or fails with RESOURCE_NOT_FOUND.
func Product(ctx context.Context, q Queries, id pgtype.UUID) (dbgen.Product, error) {
	product, err := q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Product{}, common.NotFound("product not found")
		}
		return dbgen.Product{}, common.Internal("unable to load product", err)
	}
	if !product.Active {
		return dbgen.Product{}, common.Validation("product %s is not active", product.Sku)
	}
	return product, nil
}

// PriceAt returns the store price effective at the instant, falling back to the base price.
func PriceAt(ctx context.Context, q Queries, storeID pgtype.UUID, product dbgen.Product, at time.Time) (decimal.Decimal, PriceSource, error) {
	price, err := q.GetStorePriceAt(ctx, dbgen.GetStorePriceAtParams{
		StoreID:   storeID,
		ProductID: product.ID,
		At:        pgtype.Timestamptz{Time: at, Valid: true},
	})
	if err == nil {
		return price, SourceStorePrice, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, "", common.Internal("unable to resolve store price", err)
	}
	return product.BasePrice, SourceBasePrice, nil
}
