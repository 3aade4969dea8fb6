package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"cotizador/internal/apierror"
	"cotizador/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
		code   string
	}{
		{"not found", &pricing.NotFoundError{Entidad: "producto", ID: "x"}, http.StatusNotFound, apierror.CodeNotFound},
		{"unavailable", &pricing.UnavailableItemError{Entidad: "MATERIAL", ID: "x"}, http.StatusConflict, apierror.CodeUnavailable},
		{"conflict", pricing.ErrVersionConflict, http.StatusConflict, apierror.CodeVersionConflict},
		{"margin", &pricing.InvalidMarginError{Margen: decimal.NewFromInt(1), Estrategia: pricing.MargenObjetivo}, http.StatusUnprocessableEntity, apierror.CodeInvalidMargin},
		{"persistence", &pricing.PersistenceError{Op: "crear cotizacion", Err: errors.New("pq: deadlock")}, http.StatusInternalServerError, apierror.CodePersistence},
		{"persistence wrapping conflict", &pricing.PersistenceError{Op: "nueva version", Err: pricing.ErrVersionConflict}, http.StatusConflict, apierror.CodeVersionConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError, apierror.CodeInternal},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			status, body := apierror.FromError(c.err)
			assert.Equal(t, c.status, status)
			e, ok := body.(*apierror.APIError)
			require.True(t, ok)
			assert.Equal(t, c.code, e.Code)
			assert.NotContains(t, e.Detail, "pq:")
		})
	}
}

func TestFromError_ValidationKeepsFields(t *testing.T) {
	status, body := apierror.FromError(pricing.NewValidationError("cantidad", "debe ser mayor a cero"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	v, ok := body.(*apierror.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "debe ser mayor a cero", v.Fields["cantidad"])
}
