package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

const defaultLotsPerPage = 50

type Handler struct {
	Svc *Service
}

// Lots handles GET /inventory/stores/{storeId}/products/{productId}/lots.
func (h *Handler) Lots(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "inventory service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, defaultLotsPerPage)
	out, err := h.Svc.Lots(r.Context(), chi.URLParam(r, "storeId"), chi.URLParam(r, "productId"), page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}

// OnHand handles GET /inventory/stores/{storeId}/on-hand.
func (h *Handler) OnHand(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "inventory service not configured", nil)
		return
	}
	out, err := h.Svc.OnHand(r.Context(), chi.URLParam(r, "storeId"), r.URL.Query().Get("productId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}

// Receive handles POST /inventory/lots/receive.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "inventory service not configured", nil)
		return
	}
	var in ReceiveInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Receive(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, out)
}
