package pricing

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Alcance is the entity level a margin rule targets.
type Alcance string

const (
	AlcanceGlobal       Alcance = "GLOBAL"
	AlcanceCategoria    Alcance = "CATEGORY"
	AlcanceProducto     Alcance = "PRODUCT"
	AlcanceCliente      Alcance = "CUSTOMER"
	AlcanceGrupoCliente Alcance = "CUSTOMER_GROUP"
)

// Valido reports whether a is one of the known scopes.
func (a Alcance) Valido() bool {
	switch a {
	case AlcanceGlobal, AlcanceCategoria, AlcanceProducto, AlcanceCliente, AlcanceGrupoCliente:
		return true
	}
	return false
}

// ModoExclusiva defines what a non-stackable dynamic rule does to the margin.
type ModoExclusiva string

const (
	// ModoAditivo adds the rule's adjustment once and stops evaluating.
	ModoAditivo ModoExclusiva = "ADITIVO"
	// ModoReemplazo makes the rule's adjustment the whole margin and stops.
	ModoReemplazo ModoExclusiva = "REEMPLAZO"
)

// ContextoAlcance identifies the targets a quote belongs to at every scope.
type ContextoAlcance struct {
	ProductoID     uuid.UUID
	CategoriaID    uuid.UUID
	ClienteID      *uuid.UUID
	GrupoClienteID *uuid.UUID
}

// Objetivo returns the concrete target for scope a, false if the context has none.
func (c ContextoAlcance) Objetivo(a Alcance) (uuid.UUID, bool) {
	switch a {
	case AlcanceGlobal:
		return uuid.Nil, true
	case AlcanceProducto:
		return c.ProductoID, true
	case AlcanceCategoria:
		return c.CategoriaID, true
	case AlcanceCliente:
		if c.ClienteID == nil {
			return uuid.Nil, false
		}
		return *c.ClienteID, true
	case AlcanceGrupoCliente:
		if c.GrupoClienteID == nil {
			return uuid.Nil, false
		}
		return *c.GrupoClienteID, true
	}
	return uuid.Nil, false
}

func coincide(ctx ContextoAlcance, a Alcance, objetivo *uuid.UUID) bool {
	target, ok := ctx.Objetivo(a)
	if !ok {
		return false
	}
	if a == AlcanceGlobal {
		return true
	}
	return objetivo != nil && *objetivo == target
}

// ReglaFija is an active fixed margin rule.
type ReglaFija struct {
	ID         uuid.UUID
	Alcance    Alcance
	ObjetivoID *uuid.UUID
	Margen     decimal.Decimal
	CreadaEn   time.Time
}

// ReglaDinamica is an active conditional margin adjustment.
type ReglaDinamica struct {
	ID             uuid.UUID
	Nombre         string
	Alcance        Alcance
	ObjetivoID     *uuid.UUID
	CantidadMinima *decimal.Decimal
	SubtotalMinimo *decimal.Decimal
	Ajuste         decimal.Decimal
	Prioridad      int
	Acumulable     bool
}

// Satisface reports whether both thresholds hold. Unset thresholds hold trivially.
func (r ReglaDinamica) Satisface(cantidad, subtotal decimal.Decimal) bool {
	if r.CantidadMinima != nil && cantidad.LessThan(*r.CantidadMinima) {
		return false
	}
	if r.SubtotalMinimo != nil && subtotal.LessThan(*r.SubtotalMinimo) {
		return false
	}
	return true
}

// MargenesPorDefecto are the entity-level margin defaults of the override chain.
type MargenesPorDefecto struct {
	Producto  *decimal.Decimal
	Categoria *decimal.Decimal
	Global    *decimal.Decimal
}

// OrigenMargen records which candidate produced the base margin.
type OrigenMargen struct {
	Alcance    Alcance    `json:"alcance,omitempty"`
	ReglaID    *uuid.UUID `json:"regla_id,omitempty"`
	PorDefecto bool       `json:"por_defecto"`
	// Duplicadas counts extra active rules found for the winning target.
	Duplicadas int `json:"duplicadas,omitempty"`
}

// ResultadoMargen is the outcome of margin resolution.
type ResultadoMargen struct {
	Base       decimal.Decimal
	Origen     OrigenMargen
	Encontrado bool
	Ajuste     decimal.Decimal
	Efectivo   decimal.Decimal
	Aplicadas  []uuid.UUID
	Reemplazo  bool
}

type resolverAlcance struct {
	alcance    Alcance
	porDefecto func(MargenesPorDefecto) *decimal.Decimal
}

// Most specific first. Exactly one candidate is chosen.
var resolvers = []resolverAlcance{
	{alcance: AlcanceProducto, porDefecto: func(d MargenesPorDefecto) *decimal.Decimal { return d.Producto }},
	{alcance: AlcanceCliente},
	{alcance: AlcanceGrupoCliente},
	{alcance: AlcanceCategoria, porDefecto: func(d MargenesPorDefecto) *decimal.Decimal { return d.Categoria }},
	{alcance: AlcanceGlobal, porDefecto: func(d MargenesPorDefecto) *decimal.Decimal { return d.Global }},
}

// MargenBase walks the scope precedence and returns the first match. At a
// given scope an explicit rule wins over the entity default. Several active
// rules for one target are ordered newest first, then by id.
func MargenBase(reglas []ReglaFija, defs MargenesPorDefecto, ctx ContextoAlcance) (decimal.Decimal, OrigenMargen, bool) {
	for _, res := range resolvers {
		var candidatas []ReglaFija
		for _, r := range reglas {
			if r.Alcance == res.alcance && coincide(ctx, r.Alcance, r.ObjetivoID) {
				candidatas = append(candidatas, r)
			}
		}
		if len(candidatas) > 0 {
			sort.SliceStable(candidatas, func(i, j int) bool {
				if !candidatas[i].CreadaEn.Equal(candidatas[j].CreadaEn) {
					return candidatas[i].CreadaEn.After(candidatas[j].CreadaEn)
				}
				return bytes.Compare(candidatas[i].ID[:], candidatas[j].ID[:]) < 0
			})
			ganadora := candidatas[0]
			id := ganadora.ID
			return ganadora.Margen, OrigenMargen{
				Alcance:    res.alcance,
				ReglaID:    &id,
				Duplicadas: len(candidatas) - 1,
			}, true
		}
		if res.porDefecto != nil {
			if d := res.porDefecto(defs); d != nil {
				return *d, OrigenMargen{Alcance: res.alcance, PorDefecto: true}, true
			}
		}
	}
	return decimal.Zero, OrigenMargen{}, false
}

// estadoAjuste is the accumulator of the dynamic rule fold.
type estadoAjuste struct {
	acumulado decimal.Decimal
	reemplazo *decimal.Decimal
	aplicadas []uuid.UUID
}

// pasoAjuste folds one rule into the state; false stops the fold.
func pasoAjuste(e estadoAjuste, r ReglaDinamica, modo ModoExclusiva) (estadoAjuste, bool) {
	e.aplicadas = append(e.aplicadas, r.ID)
	if r.Acumulable {
		e.acumulado = e.acumulado.Add(r.Ajuste)
		return e, true
	}
	if modo == ModoReemplazo {
		v := r.Ajuste
		e.reemplazo = &v
		return e, false
	}
	e.acumulado = e.acumulado.Add(r.Ajuste)
	return e, false
}

// ReglasSatisfechas filters the dynamic rules that target ctx and whose
// thresholds hold, sorted by priority then id.
func ReglasSatisfechas(reglas []ReglaDinamica, ctx ContextoAlcance, cantidad, subtotal decimal.Decimal) []ReglaDinamica {
	var out []ReglaDinamica
	for _, r := range reglas {
		if coincide(ctx, r.Alcance, r.ObjetivoID) && r.Satisface(cantidad, subtotal) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prioridad != out[j].Prioridad {
			return out[i].Prioridad < out[j].Prioridad
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// ResolverMargen combines the base margin with the dynamic adjustments.
// The result is not clamped; strategies reject margins they cannot use.
func ResolverMargen(
	fijas []ReglaFija,
	defs MargenesPorDefecto,
	dinamicas []ReglaDinamica,
	ctx ContextoAlcance,
	cantidad, subtotal decimal.Decimal,
	modo ModoExclusiva,
) ResultadoMargen {
	base, origen, ok := MargenBase(fijas, defs, ctx)

	estado := estadoAjuste{acumulado: decimal.Zero}
	for _, r := range ReglasSatisfechas(dinamicas, ctx, cantidad, subtotal) {
		var seguir bool
		estado, seguir = pasoAjuste(estado, r, modo)
		if !seguir {
			break
		}
	}

	res := ResultadoMargen{
		Base:       base,
		Origen:     origen,
		Encontrado: ok,
		Ajuste:     estado.acumulado,
		Efectivo:   base.Add(estado.acumulado),
		Aplicadas:  estado.aplicadas,
	}
	if estado.reemplazo != nil {
		res.Reemplazo = true
		res.Efectivo = *estado.reemplazo
		res.Ajuste = res.Efectivo.Sub(base)
	}
	return res
}
