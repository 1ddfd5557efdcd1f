package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
)

func TestQuotePrefersEffectiveStorePrice(t *testing.T) {
	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Seed(func(seed *memdb.Seeder) {
		seed.StorePrice(dbgen.StorePrice{
			StoreID:       retail.Store.ID,
			ProductID:     retail.ProductA.ID,
			Price:         decimal.RequireFromString("8.50"),
			EffectiveFrom: ts(from),
			EffectiveTo:   ts(from.AddDate(0, 1, 0)),
		})
	})
	svc := &catalog.Service{DB: store}
	ctx := context.Background()

	quote, err := svc.Quote(ctx, db.UUIDString(retail.Store.ID), db.UUIDString(retail.ProductA.ID), from.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "8.50", quote.UnitPrice)
	require.Equal(t, string(catalog.SourceStorePrice), quote.Source)

	quote, err = svc.Quote(ctx, db.UUIDString(retail.Store.ID), db.UUIDString(retail.ProductA.ID), from.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Equal(t, "10.00", quote.UnitPrice)
	require.Equal(t, string(catalog.SourceBasePrice), quote.Source)
}

func TestQuoteIsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	at := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	svc := &catalog.Service{DB: store, Cache: catalog.NewCache(client, time.Minute)}

	_, err := svc.Quote(context.Background(), db.UUIDString(retail.Store.ID), db.UUIDString(retail.ProductB.ID), at)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)

	var cached catalog.Quote
	ok, err := svc.Cache.GetJSON(context.Background(), mr.Keys()[0], &cached)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5.00", cached.UnitPrice)
	require.Equal(t, "SKU-B", cached.Sku)
}

func TestPriceHandler(t *testing.T) {
	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	h := &catalog.Handler{Svc: &catalog.Service{DB: store}}
	r := chi.NewRouter()
	r.Get("/catalog/stores/{storeId}/products/{productId}/price", h.Price)

	req := httptest.NewRequest(http.MethodGet, "/catalog/stores/"+db.UUIDString(retail.Store.ID)+"/products/"+db.UUIDString(retail.ProductA.ID)+"/price", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data catalog.Quote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "10.00", body.Data.UnitPrice)

	req = httptest.NewRequest(http.MethodGet, "/catalog/stores/"+db.UUIDString(retail.Store.ID)+"/products/"+db.UUIDString(db.NewUUID())+"/price", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "RESOURCE_NOT_FOUND")

	req = httptest.NewRequest(http.MethodGet, "/catalog/stores/not-a-uuid/products/x/price", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
