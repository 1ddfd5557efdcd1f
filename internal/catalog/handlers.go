package catalog

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes price quotes over HTTP.
type Handler struct {
	Svc *Service
}

// Price handles GET /catalog/stores/{storeId}/products/{productId}/price?at=.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	var at time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.WriteError(w, common.ValidationErr(err, "at must be an RFC3339 timestamp"))
			return
		}
		at = parsed
	}
	quote, err := h.Svc.Quote(r.Context(), chi.URLParam(r, "storeId"), chi.URLParam(r, "productId"), at)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, quote)
}
