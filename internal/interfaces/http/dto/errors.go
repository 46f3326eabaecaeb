package dto

import (
	"errors"
	"net/http"

	"github.com/corebank/backend/internal/domain/shared"
)

// Error codes returned by the ops endpoints
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// StatusForError maps an error to its HTTP status and code. Ledger domain
// errors map by kind; anything else is internal.
func StatusForError(err error) (int, string) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrCodeInternal
	}
	switch de.Kind {
	case shared.KindValidation:
		return http.StatusBadRequest, ErrCodeValidation
	case shared.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case shared.KindBusinessRule:
		return http.StatusUnprocessableEntity, ErrCodeBusinessRule
	}
	if de.Code == shared.ErrConcurrencyConflict.Code {
		return http.StatusConflict, ErrCodeConflict
	}
	if de.Retryable {
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
