package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	uno     = decimal.NewFromInt(1)
	sesenta = decimal.NewFromInt(60)
)

// TipoLinea classifies a cost line in the quote breakdown.
type TipoLinea string

const (
	LineaMaterial    TipoLinea = "MATERIAL"
	LineaImpresion   TipoLinea = "IMPRESION"
	LineaPreparacion TipoLinea = "PREPARACION"
	LineaAcabado     TipoLinea = "ACABADO"
)

// TipoCalculo is how a finish converts quantity into cost.
type TipoCalculo string

const (
	PorUnidad TipoCalculo = "PER_UNIT"
	PorM2     TipoCalculo = "PER_M2"
	PorLote   TipoCalculo = "PER_LOT"
	PorHora   TipoCalculo = "PER_HOUR"
)

// LineaCosto is one entry of the cost breakdown.
type LineaCosto struct {
	Tipo          TipoLinea       `json:"tipo"`
	Nombre        string          `json:"nombre"`
	ItemID        uuid.UUID       `json:"item_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	CostoTotal    decimal.Decimal `json:"costo_total"`
}

// EntradaMaterial holds the resolved inputs of a material line.
type EntradaMaterial struct {
	ItemID            uuid.UUID
	Nombre            string
	CostoUnitario     decimal.Decimal
	CantidadPorUnidad decimal.Decimal
	FactorDesperdicio decimal.Decimal
}

// CostoMaterial = unit × qtyPerUnit × quantity × (1+waste) × (1+loss).
func CostoMaterial(in EntradaMaterial, cantidad, factorPerdida decimal.Decimal) LineaCosto {
	consumo := in.CantidadPorUnidad.Mul(cantidad)
	total := in.CostoUnitario.
		Mul(consumo).
		Mul(uno.Add(in.FactorDesperdicio)).
		Mul(uno.Add(factorPerdida))
	return LineaCosto{
		Tipo:          LineaMaterial,
		Nombre:        in.Nombre,
		ItemID:        in.ItemID,
		Cantidad:      consumo,
		CostoUnitario: in.CostoUnitario,
		CostoTotal:    total,
	}
}

// EntradaImpresion holds the resolved inputs of the printing lines.
type EntradaImpresion struct {
	ItemID             uuid.UUID
	Nombre             string
	CostoUnitario      decimal.Decimal
	Rendimiento        decimal.Decimal
	MinutosPreparacion decimal.Decimal
	CostoHora          decimal.Decimal
	CostoMinimo        decimal.Decimal
}

// CostoImpresion returns the run line (unit × quantity / yield) and the
// one-time setup line, max(setupMinutes/60 × hourCost, minFee).
func CostoImpresion(in EntradaImpresion, cantidad decimal.Decimal) (LineaCosto, LineaCosto) {
	rendimiento := in.Rendimiento
	if !rendimiento.IsPositive() {
		rendimiento = uno
	}
	tiradas := cantidad.Div(rendimiento)
	corrida := LineaCosto{
		Tipo:          LineaImpresion,
		Nombre:        in.Nombre,
		ItemID:        in.ItemID,
		Cantidad:      tiradas,
		CostoUnitario: in.CostoUnitario,
		CostoTotal:    in.CostoUnitario.Mul(tiradas),
	}

	horas := in.MinutosPreparacion.Div(sesenta)
	preparacion := horas.Mul(in.CostoHora)
	if in.CostoMinimo.GreaterThan(preparacion) {
		preparacion = in.CostoMinimo
	}
	setup := LineaCosto{
		Tipo:          LineaPreparacion,
		Nombre:        "Preparacion " + in.Nombre,
		ItemID:        in.ItemID,
		Cantidad:      uno,
		CostoUnitario: preparacion,
		CostoTotal:    preparacion,
	}
	return corrida, setup
}

// EntradaAcabado holds the resolved inputs of a finish line.
type EntradaAcabado struct {
	ItemID          uuid.UUID
	Nombre          string
	TipoCalculo     TipoCalculo
	CostoUnitario   decimal.Decimal
	CostoMinimo     decimal.Decimal
	UnidadesPorLote decimal.Decimal
	UnidadesPorHora decimal.Decimal
	// AreaM2 is the area of one finished piece, used by PER_M2.
	AreaM2 decimal.Decimal
}

// CostoAcabado prices a finish by its calculation type, floored at its minimum fee.
func CostoAcabado(in EntradaAcabado, cantidad decimal.Decimal) (LineaCosto, error) {
	var base decimal.Decimal
	switch in.TipoCalculo {
	case PorUnidad:
		base = cantidad
	case PorM2:
		base = cantidad.Mul(in.AreaM2)
	case PorLote:
		if !in.UnidadesPorLote.IsPositive() {
			return LineaCosto{}, NewValidationError("acabado."+in.ItemID.String(), "unidades_por_lote debe ser positivo")
		}
		base = cantidad.Div(in.UnidadesPorLote).Ceil()
	case PorHora:
		if !in.UnidadesPorHora.IsPositive() {
			return LineaCosto{}, NewValidationError("acabado."+in.ItemID.String(), "unidades_por_hora debe ser positivo")
		}
		base = cantidad.Div(in.UnidadesPorHora)
	default:
		return LineaCosto{}, NewValidationError("acabado."+in.ItemID.String(), "tipo de calculo desconocido: "+string(in.TipoCalculo))
	}

	total := in.CostoUnitario.Mul(base)
	if in.CostoMinimo.GreaterThan(total) {
		total = in.CostoMinimo
	}
	return LineaCosto{
		Tipo:          LineaAcabado,
		Nombre:        in.Nombre,
		ItemID:        in.ItemID,
		Cantidad:      base,
		CostoUnitario: in.CostoUnitario,
		CostoTotal:    total,
	}, nil
}

// Subtotal rounds each line at the LINEA checkpoint and sums them. The input
// slice is not modified.
func Subtotal(lineas []LineaCosto, pol PoliticaRedondeo) ([]LineaCosto, decimal.Decimal) {
	out := make([]LineaCosto, len(lineas))
	suma := decimal.Zero
	for i, l := range lineas {
		l.CostoTotal = pol.Aplicar(PuntoLinea, l.CostoTotal)
		out[i] = l
		suma = suma.Add(l.CostoTotal)
	}
	return out, pol.Aplicar(PuntoSubtotal, suma)
}
