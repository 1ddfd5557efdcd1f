package checkout

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// ReplayHeader is set on responses served from a stored idempotent result.
const ReplayHeader = "Idempotent-Replayed"

const maxBodyBytes = 1 << 20

type Handler struct {
	Svc *Service
}

// Checkout handles POST /sales/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	token, err := common.IdempotencyKey(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	raw, fingerprint, err := ReadFingerprinted(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		common.WriteError(w, common.ValidationErr(err, "invalid payload"))
		return
	}
	res, err := h.Svc.Checkout(r.Context(), token, fingerprint, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	WriteResult(w, http.StatusCreated, res.Body, res.Replayed)
}

// ReadFingerprinted reads the request body and hashes its canonical JSON form.
func ReadFingerprinted(r *http.Request) ([]byte, string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", common.ValidationErr(err, "unable to read request body")
	}
	if len(raw) > maxBodyBytes {
		return nil, "", common.Validation("request body is too large")
	}
	canonical, err := common.CanonicalJSON(raw)
	if err != nil {
		return nil, "", common.ValidationErr(err, "invalid payload")
	}
	return raw, common.Sha256Hex(string(canonical)), nil
}

// WriteResult wraps a stored result in the success envelope without re-encoding it.
func WriteResult(w http.ResponseWriter, status int, body []byte, replayed bool) {
	if replayed {
		w.Header().Set(ReplayHeader, "true")
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + 10)
	buf.WriteString(`{"data":`)
	buf.Write(body)
	buf.WriteString("}\n")
	common.RawJSON(w, status, buf.Bytes())
}
