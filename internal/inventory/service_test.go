package inventory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	"github.com/noah-isme/backend-pos/internal/db/memdb"
	"github.com/noah-isme/backend-pos/internal/inventory"
)

func TestReceiveUpsertsLots(t *testing.T) {
	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	svc := &inventory.Service{DB: store}
	ctx := context.Background()
	expiry := "2026-08-01"

	out, err := svc.Receive(ctx, inventory.ReceiveInput{
		StoreID:   db.UUIDString(retail.Store.ID),
		ProductID: db.UUIDString(retail.ProductB.ID),
		Lots: []inventory.ReceiveLotInput{
			{LotCode: " b-aug ", ExpiryDate: &expiry, Quantity: qty("4")},
			{LotCode: "b-open", Quantity: qty("1.250")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lots, 2)
	require.Equal(t, "B-AUG", out.Lots[0].LotCode)
	require.Equal(t, "2026-08-01", *out.Lots[0].ExpiryDate)
	require.True(t, strings.HasPrefix(out.Reference, "RCV-"))

	_, err = svc.Receive(ctx, inventory.ReceiveInput{
		StoreID:   db.UUIDString(retail.Store.ID),
		ProductID: db.UUIDString(retail.ProductB.ID),
		Reference: "PO-42",
		Lots:      []inventory.ReceiveLotInput{{LotCode: "B-AUG", Quantity: qty("1")}},
	})
	require.NoError(t, err)

	onHand, err := svc.OnHand(ctx, db.UUIDString(retail.Store.ID), "")
	require.NoError(t, err)
	require.Len(t, onHand, 1)
	require.Equal(t, "6.25", onHand[0].QuantityOnHand)
	require.Equal(t, int64(2), onHand[0].LotCount)

	lots, err := svc.Lots(ctx, db.UUIDString(retail.Store.ID), db.UUIDString(retail.ProductB.ID), 1, 1)
	require.NoError(t, err)
	require.Len(t, lots.Lots, 1)
	require.Equal(t, "B-AUG", lots.Lots[0].LotCode)
	require.Equal(t, "5", lots.Lots[0].QuantityOnHand)
	require.Equal(t, 2, lots.Pagination.TotalItems)
}

func TestReceiveValidation(t *testing.T) {
	store := memdb.New()
	retail := memdb.SeedRetail(store, memdb.RetailOptions{})
	svc := &inventory.Service{DB: store}
	ctx := context.Background()
	base := inventory.ReceiveInput{StoreID: db.UUIDString(retail.Store.ID), ProductID: db.UUIDString(retail.ProductA.ID)}

	in := base
	in.Lots = []inventory.ReceiveLotInput{{LotCode: "X", Quantity: qty("0")}}
	_, err := svc.Receive(ctx, in)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	in = base
	in.Lots = []inventory.ReceiveLotInput{{LotCode: "x", Quantity: qty("1")}, {LotCode: "X ", Quantity: qty("1")}}
	_, err = svc.Receive(ctx, in)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	in = base
	in.ProductID = db.UUIDString(db.NewUUID())
	in.Lots = []inventory.ReceiveLotInput{{LotCode: "X", Quantity: qty("1")}}
	_, err = svc.Receive(ctx, in)
	require.Equal(t, common.CodeNotFound, common.CodeOf(err))
}

func TestInventoryHandlers(t *testing.T) {
	store, retail := seedLots(t)
	h := &inventory.Handler{Svc: &inventory.Service{DB: store}}
	r := chi.NewRouter()
	r.Get("/inventory/stores/{storeId}/products/{productId}/lots", h.Lots)
	r.Get("/inventory/stores/{storeId}/on-hand", h.OnHand)
	r.Post("/inventory/lots/receive", h.Receive)

	storeID := db.UUIDString(retail.Store.ID)
	productID := db.UUIDString(retail.ProductA.ID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/stores/"+storeID+"/products/"+productID+"/lots", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Less(t, strings.Index(body, "A-JUL"), strings.Index(body, "A-NOEXP"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/stores/"+storeID+"/on-hand?productId="+productID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"quantityOnHand":"13"`)

	rec = httptest.NewRecorder()
	payload := `{"storeId":"` + storeID + `","productId":"` + productID + `","lots":[{"lotCode":"a-new","quantity":2}]}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/inventory/lots/receive", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "A-NEW")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/stores/"+db.UUIDString(db.NewUUID())+"/on-hand", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
