package cart

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

type Handler struct {
	Svc *Service
}

func (h *Handler) unavailable(w http.ResponseWriter) bool {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return true
	}
	return false
}

// decodeOptional decodes a body that may be absent.
func decodeOptional(r *http.Request, dst any) error {
	if err := common.DecodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func respond(w http.ResponseWriter, status int, out Snapshot, err error) {
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, status, out)
}

// Create handles POST /carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Create(r.Context(), in)
	respond(w, http.StatusCreated, out, err)
}

// Get handles GET /carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	out, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, out, err)
}

// AddLine handles POST /carts/{id}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	var in AddLineInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.AddLine(r.Context(), chi.URLParam(r, "id"), in)
	respond(w, http.StatusOK, out, err)
}

// UpdateLine handles PUT /carts/{id}/lines/{lineId}.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	var in UpdateLineInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.UpdateLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"), in)
	respond(w, http.StatusOK, out, err)
}

// RemoveLine handles DELETE /carts/{id}/lines/{lineId}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	out, err := h.Svc.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	respond(w, http.StatusOK, out, err)
}

// Recalculate handles POST /carts/{id}/recalculate. The body is optional.
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	var in RecalculateInput
	if err := decodeOptional(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Recalculate(r.Context(), chi.URLParam(r, "id"), in)
	respond(w, http.StatusOK, out, err)
}

// Park handles POST /carts/{id}/park.
func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	var in ParkInput
	if err := decodeOptional(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Park(r.Context(), chi.URLParam(r, "id"), in)
	respond(w, http.StatusOK, out, err)
}

// Resume handles POST /carts/{id}/resume.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	out, err := h.Svc.Resume(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, out, err)
}

// Cancel handles POST /carts/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	out, err := h.Svc.Cancel(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, out, err)
}
