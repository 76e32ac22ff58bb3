package handler

import (
	"net/http"

	"github.com/client-portal-api/internal/application/lookup"
	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/transport/http/middleware"
)

// ClientHandler serves the authenticated client's own record.
type ClientHandler struct {
	svc lookup.Service
}

func NewClientHandler(svc lookup.Service) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// Me returns the full client record for the signed-in portal user. Unlike the
// public lookup, nothing is masked here: the caller already proved the
// identity to the platform.
func (h *ClientHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	email := claims.Email
	c, err := h.svc.Resolve(r.Context(), domain.LookupRequest{Email: &email})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
