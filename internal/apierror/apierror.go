// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"cotizador/internal/pricing"
)

// Error kinds carried in the "code" field.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnavailable     = "UNAVAILABLE_ITEM"
	CodeInvalidMargin   = "INVALID_MARGIN"
	CodeValidation      = "VALIDATION"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodePersistence     = "PERSISTENCE"
	CodeInternal        = "INTERNAL"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "Error de validacion", Fields: fields}
}

// FromError maps an engine error to its HTTP status and envelope. Anything
// it does not recognize is a 500 with a generic message.
func FromError(err error) (int, any) {
	var (
		ve *pricing.ValidationError
		im *pricing.InvalidMarginError
	)
	switch {
	// checked before ErrNotFound, which it also matches
	case errors.Is(err, pricing.ErrUnavailableItem):
		return http.StatusConflict, &APIError{Code: CodeUnavailable, Detail: err.Error()}
	case errors.Is(err, pricing.ErrNotFound):
		return http.StatusNotFound, &APIError{Code: CodeNotFound, Detail: err.Error()}
	case errors.Is(err, pricing.ErrVersionConflict):
		return http.StatusConflict, &APIError{Code: CodeVersionConflict, Detail: "la version actual cambio; vuelva a leer el item"}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, NewValidation(ve.Fields)
	case errors.As(err, &im):
		return http.StatusUnprocessableEntity, &APIError{Code: CodeInvalidMargin, Detail: im.Error()}
	case errors.Is(err, pricing.ErrPersistence):
		return http.StatusInternalServerError, &APIError{Code: CodePersistence, Detail: "No se pudo guardar; no se aplico ningun cambio"}
	}
	return http.StatusInternalServerError, &APIError{Code: CodeInternal, Detail: "Error interno del servidor"}
}
