package api

import (
	"errors"
	"net/http"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/generation"
	"github.com/errata-app/errata-api/internal/service/identity"
	"github.com/errata-app/errata-api/internal/service/review"
	"github.com/errata-app/errata-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrExpiredToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, review.ErrRecordNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, review.ErrRecordNotFound),
		errors.Is(err, store.ErrErrorRecordNotFound),
		errors.Is(err, store.ErrXPStateNotFound),
		errors.Is(err, store.ErrLeaderboardEntryNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, review.ErrInvalidOutcome),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyEntryPayload),
		errors.Is(err, generation.ErrEmptyPrompt):
		return http.StatusBadRequest

	// Upstream generation failures
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, identity.ErrInvalidToken):
		return "Invalid token"

	case errors.Is(err, identity.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, review.ErrRecordNotOwned):
		return "You do not own this record"

	case errors.Is(err, review.ErrRecordNotFound),
		errors.Is(err, store.ErrErrorRecordNotFound):
		return "Error record not found"

	case errors.Is(err, review.ErrInvalidOutcome):
		return "Invalid review outcome"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrEmptyEntryPayload):
		return "Entry payload is required"

	case errors.Is(err, generation.ErrEmptyPrompt):
		return "Prompt is required"

	case errors.Is(err, generation.ErrGenerationFailed):
		return "Text generation is temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}
