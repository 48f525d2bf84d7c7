package api

import (
	"errors"
	"net/http"

	"telegram-dwh/internal/persona"
	"telegram-dwh/internal/telegram"
)

// writeError maps domain errors onto HTTP statuses. Auth-state failures
// become 401 so the client can route to the login flow, rejected input
// becomes 400, missing resources 404, and everything else stays a 500.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	var (
		notFound     *telegram.NotFoundError
		insufficient *persona.InsufficientDataError
	)
	switch {
	case errors.Is(err, telegram.ErrNotAuthorized), errors.Is(err, telegram.ErrPasswordRequired):
		return http.StatusUnauthorized
	case errors.Is(err, telegram.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusBadRequest
	default:
		// ErrNotConfigured and upstream failures are server-side problems.
		return http.StatusInternalServerError
	}
}
