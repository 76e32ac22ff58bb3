package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrCodeInvalid is the single user-facing failure for code validation.
	// Wrong, expired, already-used and never-issued codes all collapse into it
	// so a caller cannot distinguish the cases.
	ErrCodeInvalid = errors.New("invalid or expired code")

	// ErrDeliveryFailed means the notification dispatcher could not send.
	ErrDeliveryFailed = errors.New("could not deliver code")

	// ErrExchangeFailed means the identity platform rejected a code or token
	// exchange.
	ErrExchangeFailed = errors.New("session exchange failed")

	// ErrDefect marks a data or caller-contract violation, e.g. one identifier
	// matching more than one client. Logged and surfaced as a generic failure.
	ErrDefect = errors.New("internal contract violation")
)
