package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/client-portal-api/internal/domain"
	"github.com/rs/zerolog/log"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP responses. Code-validation
// failures always produce the same message regardless of cause, and defects
// are logged but surfaced as a generic failure.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeInvalid):
		writeError(w, http.StatusUnauthorized, domain.ErrCodeInvalid.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, domain.ErrDeliveryFailed.Error())
	case errors.Is(err, domain.ErrExchangeFailed):
		writeError(w, http.StatusBadGateway, domain.ErrExchangeFailed.Error())
	case errors.Is(err, domain.ErrDefect):
		log.Error().Err(err).Msg("contract violation")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
