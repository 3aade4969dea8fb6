package pricing

import "github.com/shopspring/decimal"

var centavo = decimal.New(1, -2)

// Entrada is everything the chain needs once costs and rules are resolved.
// It holds no references to storage; the same Entrada always prices the same.
type Entrada struct {
	Cantidad decimal.Decimal
	Lineas   []LineaCosto
	Contexto ContextoAlcance

	ReglasFijas        []ReglaFija
	ReglasDinamicas    []ReglaDinamica
	MargenesPorDefecto MargenesPorDefecto
	ModoExclusiva      ModoExclusiva

	Estrategia        EstrategiaPrecio
	Markup            decimal.Decimal
	PrecioMinimoPieza *decimal.Decimal
	Redondeo          PoliticaRedondeo
	IVA               decimal.Decimal
}

// Resultado is the full breakdown of one priced configuration.
type Resultado struct {
	Lineas         []LineaCosto
	Subtotal       decimal.Decimal
	Margen         ResultadoMargen
	MarkupAplicado decimal.Decimal
	PrecioFormula  decimal.Decimal
	MinimoAplicado bool
	PrecioFinal    decimal.Decimal
	IVA            decimal.Decimal
	MontoIVA       decimal.Decimal
	Total          decimal.Decimal
}

// Calcular runs cost aggregation, margin resolution, the pricing strategy,
// rounding and VAT, in that order.
func Calcular(in Entrada) (Resultado, error) {
	if !in.Cantidad.IsPositive() {
		return Resultado{}, NewValidationError("cantidad", "debe ser mayor a cero")
	}

	lineas, subtotal := Subtotal(in.Lineas, in.Redondeo)

	margen := ResolverMargen(
		in.ReglasFijas,
		in.MargenesPorDefecto,
		in.ReglasDinamicas,
		in.Contexto,
		in.Cantidad,
		subtotal,
		in.ModoExclusiva,
	)

	markup := decimal.Zero
	if in.Estrategia.UsaMarkup() {
		markup = in.Markup
	}
	precio, err := AplicarEstrategia(in.Estrategia, subtotal, markup, margen.Efectivo)
	if err != nil {
		return Resultado{}, err
	}
	formula := precio
	precio = in.Redondeo.Aplicar(PuntoPrecio, precio)

	precio, minimo, clamp := AplicarMinimo(precio, in.PrecioMinimoPieza, in.Cantidad)
	final := in.Redondeo.Final(precio, minimo)

	montoIVA := Redondear(final.Mul(in.IVA), centavo)
	return Resultado{
		Lineas:         lineas,
		Subtotal:       subtotal,
		Margen:         margen,
		MarkupAplicado: markup,
		PrecioFormula:  formula,
		MinimoAplicado: clamp,
		PrecioFinal:    final,
		IVA:            in.IVA,
		MontoIVA:       montoIVA,
		Total:          final.Add(montoIVA),
	}, nil
}
