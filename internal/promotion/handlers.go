package promotion

import (
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes the read-only promotion evaluator.
type Handler struct {
	Svc *Service
}

// Evaluate handles POST /promotions/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "promotion service not configured", nil)
		return
	}
	var in EvaluateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Evaluate(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}
