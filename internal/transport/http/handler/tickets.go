package handler

import (
	"encoding/json"
	"net/http"

	"github.com/client-portal-api/internal/application/ticket"
	"github.com/client-portal-api/internal/pkg/validate"
	"github.com/client-portal-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// TicketHandler handles helpdesk ticket endpoints.
type TicketHandler struct {
	svc ticket.Service
}

func NewTicketHandler(svc ticket.Service) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// Submit accepts a ticket from an unauthenticated visitor who proves mailbox
// possession with a contact-verification code.
func (h *TicketHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ticket.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	t, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Close marks one of the authenticated user's tickets as closed.
func (h *TicketHandler) Close(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Close(r.Context(), chi.URLParam(r, "id"), claims.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ticket closed"})
}

// List returns the authenticated portal user's tickets.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tickets, err := h.svc.ListForEmail(r.Context(), claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}
