package fiscal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

type Handler struct {
	Svc *Service
}

type cancelInput struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

// Get handles GET /fiscal/documents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "fiscal service not configured", nil)
		return
	}
	out, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}

// Cancel handles POST /fiscal/documents/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "fiscal service not configured", nil)
		return
	}
	var in cancelInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Cancel(r.Context(), chi.URLParam(r, "id"), in.Reason)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}
