package pricing

import "github.com/shopspring/decimal"

// EstrategiaPrecio is the formula turning cost and margin into a price.
type EstrategiaPrecio string

const (
	CostoMarkupMargen EstrategiaPrecio = "COST_MARKUP_MARGIN"
	CostoMargen       EstrategiaPrecio = "COST_MARGIN_ONLY"
	MargenObjetivo    EstrategiaPrecio = "MARGIN_TARGET"
)

// Valida reports whether e is a known strategy.
func (e EstrategiaPrecio) Valida() bool {
	switch e {
	case CostoMarkupMargen, CostoMargen, MargenObjetivo:
		return true
	}
	return false
}

// UsaMarkup reports whether the formula multiplies by (1 + markup).
func (e EstrategiaPrecio) UsaMarkup() bool { return e == CostoMarkupMargen }

// AplicarEstrategia evaluates the formula. A margin at or below -1 is
// rejected by every strategy; MARGIN_TARGET also rejects margin >= 1.
func AplicarEstrategia(e EstrategiaPrecio, subtotal, markup, margen decimal.Decimal) (decimal.Decimal, error) {
	if margen.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return decimal.Zero, &InvalidMarginError{Margen: margen, Estrategia: e}
	}
	switch e {
	case CostoMarkupMargen:
		return subtotal.Mul(uno.Add(markup)).Mul(uno.Add(margen)), nil
	case CostoMargen:
		return subtotal.Mul(uno.Add(margen)), nil
	case MargenObjetivo:
		if margen.GreaterThanOrEqual(uno) {
			return decimal.Zero, &InvalidMarginError{Margen: margen, Estrategia: e}
		}
		return subtotal.Div(uno.Sub(margen)), nil
	}
	return decimal.Zero, NewValidationError("estrategia_precio", "estrategia desconocida: "+string(e))
}

// AplicarMinimo clamps price upward to minimoPieza × cantidad. It never lowers
// a price. The returned bool reports whether the clamp fired.
func AplicarMinimo(precio decimal.Decimal, minimoPieza *decimal.Decimal, cantidad decimal.Decimal) (decimal.Decimal, *decimal.Decimal, bool) {
	if minimoPieza == nil || !minimoPieza.IsPositive() {
		return precio, nil, false
	}
	minimo := minimoPieza.Mul(cantidad)
	if precio.LessThan(minimo) {
		return minimo, &minimo, true
	}
	return precio, &minimo, false
}
