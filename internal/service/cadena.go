package service

import (
	"strings"

	"cotizador/internal/model"
	"cotizador/internal/pricing"

	"github.com/shopspring/decimal"
)

// Every pricing setting resolves product → category → global; the first
// level that sets it wins.

func decimalEnCadena(prod, cat *decimal.Decimal, global decimal.Decimal) (decimal.Decimal, pricing.Alcance) {
	if prod != nil {
		return *prod, pricing.AlcanceProducto
	}
	if cat != nil {
		return *cat, pricing.AlcanceCategoria
	}
	return global, pricing.AlcanceGlobal
}

func textoEnCadena(prod, cat *string, global string) (string, pricing.Alcance) {
	if prod != nil && strings.TrimSpace(*prod) != "" {
		return *prod, pricing.AlcanceProducto
	}
	if cat != nil && strings.TrimSpace(*cat) != "" {
		return *cat, pricing.AlcanceCategoria
	}
	return global, pricing.AlcanceGlobal
}

// parametros are the resolved per-quote settings.
type parametros struct {
	estrategia pricing.EstrategiaPrecio
	markup     decimal.Decimal
	politica   pricing.PoliticaRedondeo
	minimo     *decimal.Decimal
	iva        decimal.Decimal
	defs       pricing.MargenesPorDefecto
	modo       pricing.ModoExclusiva
	// origenes records the level each setting came from, for the snapshot.
	origenes map[string]string
}

// resolverParametros walks the chain for every setting. A strategy or
// checkpoint name nobody recognises is a ValidationError, never a default.
func resolverParametros(p *model.Producto, cfg *model.ConfiguracionGlobal) (parametros, error) {
	cat := &p.Categoria
	origenes := make(map[string]string, 7)

	estrategia, o := textoEnCadena(p.EstrategiaPrecio, cat.EstrategiaPrecio, cfg.EstrategiaPrecio)
	origenes["estrategia_precio"] = string(o)

	markup, o := decimalEnCadena(p.MarkupDefault, cat.MarkupDefault, cfg.MarkupOperativo)
	origenes["markup"] = string(o)

	paso, o := decimalEnCadena(p.PasoRedondeo, cat.PasoRedondeo, cfg.PasoRedondeo)
	origenes["paso_redondeo"] = string(o)

	estrRedondeo, o := textoEnCadena(p.EstrategiaRedondeo, cat.EstrategiaRedondeo, cfg.EstrategiaRedondeo)
	origenes["estrategia_redondeo"] = string(o)

	puntos, o := textoEnCadena(p.PuntosRedondeo, cat.PuntosRedondeo, cfg.PuntosRedondeo)
	origenes["puntos_redondeo"] = string(o)

	iva, o := decimalEnCadena(p.TasaIVA, cat.TasaIVA, cfg.TasaIVA)
	origenes["tasa_iva"] = string(o)

	minimo := p.PrecioMinimoPieza
	switch {
	case minimo != nil:
		origenes["precio_minimo_pieza"] = string(pricing.AlcanceProducto)
	case cat.PrecioMinimoPieza != nil:
		minimo = cat.PrecioMinimoPieza
		origenes["precio_minimo_pieza"] = string(pricing.AlcanceCategoria)
	}

	modo := pricing.ModoAditivo
	switch m := pricing.ModoExclusiva(strings.ToUpper(strings.TrimSpace(cfg.ModoReglaExclusiva))); m {
	case "", pricing.ModoAditivo:
	case pricing.ModoReemplazo:
		modo = m
	default:
		return parametros{}, pricing.NewValidationError("modo_regla_exclusiva", "modo desconocido: "+cfg.ModoReglaExclusiva)
	}

	estrategiaPrecio := pricing.EstrategiaPrecio(strings.ToUpper(strings.TrimSpace(estrategia)))
	if !estrategiaPrecio.Valida() {
		return parametros{}, pricing.NewValidationError("estrategia_precio", "estrategia desconocida: "+estrategia)
	}
	listaPuntos, err := pricing.ParsePuntos(puntos)
	if err != nil {
		return parametros{}, err
	}
	politica, err := pricing.NuevaPolitica(
		pricing.EstrategiaRedondeo(strings.ToUpper(strings.TrimSpace(estrRedondeo))),
		paso,
		listaPuntos,
	)
	if err != nil {
		return parametros{}, err
	}

	global := cfg.MargenDefault
	return parametros{
		estrategia: estrategiaPrecio,
		markup:     markup,
		politica:   politica,
		minimo:     minimo,
		iva:        iva,
		defs: pricing.MargenesPorDefecto{
			Producto:  p.MargenDefault,
			Categoria: cat.MargenDefault,
			Global:    &global,
		},
		modo:     modo,
		origenes: origenes,
	}, nil
}
