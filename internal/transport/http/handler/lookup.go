package handler

import (
	"encoding/json"
	"net/http"

	"github.com/client-portal-api/internal/application/lookup"
	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/pkg/validate"
)

// LookupHandler resolves a public identifier to a client's pre-verification view.
type LookupHandler struct {
	svc lookup.Service
}

func NewLookupHandler(svc lookup.Service) *LookupHandler {
	return &LookupHandler{svc: svc}
}

func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req domain.LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := h.svc.ResolvePublic(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
