package returns

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
)

type Handler struct {
	Svc *Service
}

// Create handles POST /sales/{id}/returns.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "returns service not configured", nil)
		return
	}
	token, err := common.IdempotencyKey(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	saleID := chi.URLParam(r, "id")
	raw, _, err := checkout.ReadFingerprinted(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		common.WriteError(w, common.ValidationErr(err, "invalid payload"))
		return
	}
	// the same token reused against another sale is a different request
	fingerprint, err := common.Fingerprint(map[string]any{"saleId": saleID, "body": json.RawMessage(raw)})
	if err != nil {
		common.WriteError(w, common.ValidationErr(err, "invalid payload"))
		return
	}
	res, err := h.Svc.Return(r.Context(), saleID, token, fingerprint, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	checkout.WriteResult(w, http.StatusCreated, res.Body, res.Replayed)
}
