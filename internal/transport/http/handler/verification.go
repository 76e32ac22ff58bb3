package handler

import (
	"encoding/json"
	"net/http"

	"github.com/client-portal-api/internal/application/verification"
	"github.com/client-portal-api/internal/pkg/validate"
)

// VerificationHandler handles code issuance and validation.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// Request issues a code. The response is identical whether or not the email
// belongs to a known client.
func (h *VerificationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req verification.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Issue(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *VerificationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req verification.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Validate(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
