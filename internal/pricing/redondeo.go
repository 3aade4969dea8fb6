package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EstrategiaRedondeo selects when monetary values are snapped to the step.
type EstrategiaRedondeo string

const (
	RedondeoPorPaso EstrategiaRedondeo = "PER_STEP"
	RedondeoAlFinal EstrategiaRedondeo = "END_ONLY"
)

// PuntoRedondeo is a checkpoint in the pricing chain where PER_STEP may round.
type PuntoRedondeo string

const (
	PuntoLinea    PuntoRedondeo = "LINEA"
	PuntoSubtotal PuntoRedondeo = "SUBTOTAL"
	PuntoPrecio   PuntoRedondeo = "PRECIO"
)

var todosLosPuntos = []PuntoRedondeo{PuntoLinea, PuntoSubtotal, PuntoPrecio}

var medio = decimal.New(5, -1)

// Redondear snaps value to the nearest multiple of step, ties going up.
// A non-positive step leaves the value untouched.
func Redondear(value, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return value
	}
	return value.Div(step).Add(medio).Floor().Mul(step)
}

// RedondearArriba snaps value to the next multiple of step at or above it.
func RedondearArriba(value, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return value
	}
	return value.Div(step).Ceil().Mul(step)
}

// PoliticaRedondeo is the effective rounding configuration for one quote.
type PoliticaRedondeo struct {
	Estrategia EstrategiaRedondeo
	Paso       decimal.Decimal
	Puntos     map[PuntoRedondeo]bool
}

// NuevaPolitica builds a policy. An empty checkpoint list under PER_STEP
// means every checkpoint. An unknown strategy is a ValidationError.
func NuevaPolitica(estrategia EstrategiaRedondeo, paso decimal.Decimal, puntos []PuntoRedondeo) (PoliticaRedondeo, error) {
	if !estrategia.Valida() {
		return PoliticaRedondeo{}, NewValidationError("estrategia_redondeo", "estrategia de redondeo desconocida: "+string(estrategia))
	}
	if paso.IsNegative() {
		return PoliticaRedondeo{}, NewValidationError("paso_redondeo", "no puede ser negativo")
	}
	p := PoliticaRedondeo{Estrategia: estrategia, Paso: paso, Puntos: map[PuntoRedondeo]bool{}}
	if estrategia == RedondeoPorPaso {
		if len(puntos) == 0 {
			puntos = todosLosPuntos
		}
		for _, pt := range puntos {
			p.Puntos[pt] = true
		}
	}
	return p, nil
}

// Valida reports whether e is a known strategy.
func (e EstrategiaRedondeo) Valida() bool {
	return e == RedondeoPorPaso || e == RedondeoAlFinal
}

// ParsePuntos reads a comma separated checkpoint list ("LINEA,SUBTOTAL").
// Blank entries are skipped; an unknown name is a ValidationError.
func ParsePuntos(raw string) ([]PuntoRedondeo, error) {
	var out []PuntoRedondeo
	for _, s := range strings.Split(raw, ",") {
		nombre := strings.ToUpper(strings.TrimSpace(s))
		if nombre == "" {
			continue
		}
		switch pt := PuntoRedondeo(nombre); pt {
		case PuntoLinea, PuntoSubtotal, PuntoPrecio:
			out = append(out, pt)
		default:
			return nil, NewValidationError("puntos_redondeo", "punto de redondeo desconocido: "+nombre)
		}
	}
	return out, nil
}

// Aplicar rounds v if the policy rounds at checkpoint pt.
func (p PoliticaRedondeo) Aplicar(pt PuntoRedondeo, v decimal.Decimal) decimal.Decimal {
	if p.Estrategia != RedondeoPorPaso || !p.Puntos[pt] {
		return v
	}
	return Redondear(v, p.Paso)
}

// Final rounds the closing price. Both strategies round here. When a minimum
// is configured and half-up rounding would undercut it, the price rounds up.
func (p PoliticaRedondeo) Final(v decimal.Decimal, minimo *decimal.Decimal) decimal.Decimal {
	r := Redondear(v, p.Paso)
	if minimo != nil && r.LessThan(*minimo) {
		return RedondearArriba(*minimo, p.Paso)
	}
	return r
}

// ListaPuntos returns the active checkpoints in chain order.
func (p PoliticaRedondeo) ListaPuntos() []PuntoRedondeo {
	var out []PuntoRedondeo
	for _, pt := range todosLosPuntos {
		if p.Puntos[pt] {
			out = append(out, pt)
		}
	}
	return out
}
