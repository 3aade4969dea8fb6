package pricing_test

import (
	"errors"
	"testing"
	"time"

	"cotizador/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// politica panics on a bad policy, like decimal.RequireFromString.
func politica(e pricing.EstrategiaRedondeo, paso decimal.Decimal, puntos []pricing.PuntoRedondeo) pricing.PoliticaRedondeo {
	p, err := pricing.NuevaPolitica(e, paso, puntos)
	if err != nil {
		panic(err)
	}
	return p
}

func linea(total string) pricing.LineaCosto {
	return pricing.LineaCosto{
		Tipo:          pricing.LineaMaterial,
		Nombre:        "papel",
		ItemID:        uuid.New(),
		Cantidad:      decimal.NewFromInt(1),
		CostoUnitario: d(total),
		CostoTotal:    d(total),
	}
}

func entradaBase() pricing.Entrada {
	return pricing.Entrada{
		Cantidad: decimal.NewFromInt(1),
		Lineas:   []pricing.LineaCosto{linea("10.00")},
		Contexto: pricing.ContextoAlcance{
			ProductoID:  uuid.New(),
			CategoriaID: uuid.New(),
		},
		ModoExclusiva: pricing.ModoAditivo,
		Estrategia:    pricing.CostoMargen,
		Redondeo:      politica(pricing.RedondeoAlFinal, d("0.05"), nil),
		IVA:           decimal.Zero,
	}
}

// ── Scenarios ────────────────────────────────────────────────────────────────

func TestCalcular_GlobalMarginCostMarginOnly(t *testing.T) {
	in := entradaBase()
	in.ReglasFijas = []pricing.ReglaFija{{
		ID:       uuid.New(),
		Alcance:  pricing.AlcanceGlobal,
		Margen:   d("0.30"),
		CreadaEn: time.Now(),
	}}

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.Subtotal.Equal(d("10.00")))
	assert.True(t, res.Margen.Efectivo.Equal(d("0.30")))
	assert.True(t, res.PrecioFinal.Equal(d("13.00")), "got %s", res.PrecioFinal)
}

func TestCalcular_CategoryMarginWithNonStackableQuantityRule(t *testing.T) {
	in := entradaBase()
	in.Cantidad = decimal.NewFromInt(150)
	in.ReglasFijas = []pricing.ReglaFija{{
		ID:         uuid.New(),
		Alcance:    pricing.AlcanceCategoria,
		ObjetivoID: &in.Contexto.CategoriaID,
		Margen:     d("0.25"),
		CreadaEn:   time.Now(),
	}}
	in.ReglasDinamicas = []pricing.ReglaDinamica{{
		ID:             uuid.New(),
		Alcance:        pricing.AlcanceGlobal,
		CantidadMinima: dp("100"),
		Ajuste:         d("0.05"),
		Prioridad:      10,
	}}

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.Margen.Efectivo.Equal(d("0.30")))
	assert.True(t, res.PrecioFinal.Equal(res.Subtotal.Mul(d("1.30"))))
	assert.Len(t, res.Margen.Aplicadas, 1)

	in.ModoExclusiva = pricing.ModoReemplazo
	res, err = pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.Margen.Reemplazo)
	assert.True(t, res.Margen.Efectivo.Equal(d("0.05")))
	assert.True(t, res.PrecioFinal.Equal(d("10.50")))
}

func TestCalcular_MarginTargetAtOneFails(t *testing.T) {
	in := entradaBase()
	in.Estrategia = pricing.MargenObjetivo
	in.MargenesPorDefecto.Global = dp("1.0")

	_, err := pricing.Calcular(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pricing.ErrInvalidMargin))

	var im *pricing.InvalidMarginError
	require.True(t, errors.As(err, &im))
	assert.Equal(t, pricing.MargenObjetivo, im.Estrategia)
}

func TestCalcular_NonPositiveQuantity(t *testing.T) {
	in := entradaBase()
	in.Cantidad = decimal.Zero
	_, err := pricing.Calcular(in)
	assert.True(t, errors.Is(err, pricing.ErrValidation))
}

// ── Strategies & minimum ─────────────────────────────────────────────────────

func TestCalcular_CostMarkupMargin(t *testing.T) {
	in := entradaBase()
	in.Estrategia = pricing.CostoMarkupMargen
	in.Markup = d("0.10")
	in.MargenesPorDefecto.Global = dp("0.20")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	// 10 × 1.10 × 1.20 = 13.20
	assert.True(t, res.PrecioFinal.Equal(d("13.20")))
	assert.True(t, res.MarkupAplicado.Equal(d("0.10")))
}

func TestCalcular_MarkupIgnoredOutsideMarkupStrategy(t *testing.T) {
	in := entradaBase()
	in.Markup = d("0.50")
	in.MargenesPorDefecto.Global = dp("0.20")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.MarkupAplicado.IsZero())
	assert.True(t, res.PrecioFinal.Equal(d("12.00")))
}

func TestCalcular_MarginTarget(t *testing.T) {
	in := entradaBase()
	in.Estrategia = pricing.MargenObjetivo
	in.MargenesPorDefecto.Global = dp("0.20")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	// 10 / 0.8 = 12.50
	assert.True(t, res.PrecioFinal.Equal(d("12.50")))
}

func TestCalcular_MinimumPricePerPieceClampsUp(t *testing.T) {
	in := entradaBase()
	in.Cantidad = decimal.NewFromInt(10)
	in.PrecioMinimoPieza = dp("2.031")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.MinimoAplicado)
	// half-up would give 20.30, below the 20.31 floor
	assert.True(t, res.PrecioFinal.Equal(d("20.35")), "got %s", res.PrecioFinal)
}

func TestCalcular_MinimumNeverLowersPrice(t *testing.T) {
	in := entradaBase()
	in.MargenesPorDefecto.Global = dp("0.30")
	in.PrecioMinimoPieza = dp("1.00")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.False(t, res.MinimoAplicado)
	assert.True(t, res.PrecioFinal.Equal(d("13.00")))
}

func TestCalcular_VAT(t *testing.T) {
	in := entradaBase()
	in.MargenesPorDefecto.Global = dp("0.30")
	in.IVA = d("0.21")

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, res.MontoIVA.Equal(d("2.73")))
	assert.True(t, res.Total.Equal(d("15.73")))
}

// ── Properties ───────────────────────────────────────────────────────────────

func TestCalcular_Deterministic(t *testing.T) {
	in := entradaBase()
	in.Lineas = []pricing.LineaCosto{linea("3.333"), linea("4.127"), linea("1.009")}
	in.MargenesPorDefecto.Global = dp("0.27")
	in.Redondeo = politica(pricing.RedondeoPorPaso, d("0.05"), nil)

	first, err := pricing.Calcular(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := pricing.Calcular(in)
		require.NoError(t, err)
		assert.True(t, first.PrecioFinal.Equal(again.PrecioFinal))
	}
}

func TestCalcular_InputLinesNotMutated(t *testing.T) {
	in := entradaBase()
	in.Lineas = []pricing.LineaCosto{linea("3.333")}
	in.Redondeo = politica(pricing.RedondeoPorPaso, d("0.05"), nil)

	res, err := pricing.Calcular(in)
	require.NoError(t, err)
	assert.True(t, in.Lineas[0].CostoTotal.Equal(d("3.333")))
	assert.True(t, res.Lineas[0].CostoTotal.Equal(d("3.35")))
}

func TestCalcular_PerStepAndEndOnlyMayDiverge(t *testing.T) {
	in := entradaBase()
	in.Lineas = []pricing.LineaCosto{linea("1.02"), linea("1.02"), linea("1.02")}

	in.Redondeo = politica(pricing.RedondeoAlFinal, d("0.05"), nil)
	fin, err := pricing.Calcular(in)
	require.NoError(t, err)

	in.Redondeo = politica(pricing.RedondeoPorPaso, d("0.05"), nil)
	paso, err := pricing.Calcular(in)
	require.NoError(t, err)

	// 3.06 -> 3.05 at the end; per line 1.00 × 3 = 3.00
	assert.True(t, fin.PrecioFinal.Equal(d("3.05")))
	assert.True(t, paso.PrecioFinal.Equal(d("3.00")))
}

func materialLinea(cantidad decimal.Decimal) pricing.LineaCosto {
	return pricing.CostoMaterial(pricing.EntradaMaterial{
		ItemID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Nombre:            "couche 150g",
		CostoUnitario:     d("0.12"),
		CantidadPorUnidad: d("1"),
		FactorDesperdicio: d("0.05"),
	}, cantidad, d("0.02"))
}

func TestCalcular_MonotonicInQuantity(t *testing.T) {
	in := entradaBase()
	in.MargenesPorDefecto.Global = dp("0.30")

	prev := decimal.Zero
	for q := int64(1); q <= 300; q++ {
		in.Cantidad = decimal.NewFromInt(q)
		in.Lineas = []pricing.LineaCosto{materialLinea(in.Cantidad)}
		res, err := pricing.Calcular(in)
		require.NoError(t, err)
		assert.True(t, res.PrecioFinal.GreaterThanOrEqual(prev), "q=%d price %s < %s", q, res.PrecioFinal, prev)
		prev = res.PrecioFinal
	}
}

func TestCalcular_DiscountTierLowersUnitPrice(t *testing.T) {
	in := entradaBase()
	in.MargenesPorDefecto.Global = dp("0.30")
	in.Redondeo = politica(pricing.RedondeoAlFinal, decimal.Zero, nil)
	in.ReglasDinamicas = []pricing.ReglaDinamica{{
		ID:             uuid.New(),
		Alcance:        pricing.AlcanceGlobal,
		CantidadMinima: dp("100"),
		Ajuste:         d("-0.10"),
	}}

	unitario := func(q int64) decimal.Decimal {
		in.Cantidad = decimal.NewFromInt(q)
		in.Lineas = []pricing.LineaCosto{materialLinea(in.Cantidad)}
		res, err := pricing.Calcular(in)
		require.NoError(t, err)
		return res.PrecioFinal.Div(in.Cantidad)
	}
	assert.True(t, unitario(100).LessThan(unitario(99)))
}
