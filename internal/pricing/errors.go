package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel kinds. Every typed error below matches exactly one of them with
// errors.Is, except UnavailableItemError which also matches ErrNotFound.
var (
	ErrNotFound        = errors.New("no encontrado")
	ErrUnavailableItem = errors.New("item no disponible")
	ErrInvalidMargin   = errors.New("margen invalido")
	ErrValidation      = errors.New("solicitud invalida")
	ErrPersistence     = errors.New("error de persistencia")
	ErrVersionConflict = errors.New("conflicto de version")
)

// NotFoundError reports a missing catalog item, product, customer or config row.
type NotFoundError struct {
	Entidad string
	ID      string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Entidad)
	}
	return fmt.Sprintf("%s %s no encontrado", e.Entidad, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnavailableItemError reports an item whose current version is deactivated.
// Pricing halts on it; nothing substitutes another cost.
type UnavailableItemError struct {
	Entidad string
	ID      string
	Nombre  string
}

func (e *UnavailableItemError) Error() string {
	return fmt.Sprintf("%s %q (%s) esta desactivado", e.Entidad, e.Nombre, e.ID)
}

func (e *UnavailableItemError) Is(target error) bool {
	return target == ErrUnavailableItem || target == ErrNotFound
}

// InvalidMarginError is returned when the effective margin makes the selected
// formula undefined or non-positive.
type InvalidMarginError struct {
	Margen     decimal.Decimal
	Estrategia EstrategiaPrecio
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("margen %s invalido para la estrategia %s", e.Margen.String(), e.Estrategia)
}

func (e *InvalidMarginError) Is(target error) bool { return target == ErrInvalidMargin }

// ValidationError carries field-level problems found before any computation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "solicitud invalida: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// PersistenceError wraps a failed transactional write. The caller must not
// assume any part of the write succeeded.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
