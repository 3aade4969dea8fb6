package dto

import "github.com/shopspring/decimal"

// CotizacionSnapshot is stored verbatim in cotizaciones.snapshot. It records
// every value that contributed to the price so the quote can be explained and
// recomputed without reading the catalog again.
type CotizacionSnapshot struct {
	Configuracion ConfiguracionSnapshot `json:"configuracion"`
	// Origenes maps each resolved setting to the level it came from
	// (PRODUCT, CATEGORY or GLOBAL).
	Origenes    map[string]string  `json:"origenes"`
	Margen      MargenSnapshot     `json:"margen"`
	Redondeo    RedondeoSnapshot   `json:"redondeo"`
	Precio      PrecioSnapshot     `json:"precio"`
	Lineas      []LineaSnapshot    `json:"lineas"`
	Selecciones []SeleccionRequest `json:"selecciones"`
	Atributos   map[string]string  `json:"atributos,omitempty"`
	Contexto    ContextoSnapshot   `json:"contexto"`
}

type ConfiguracionSnapshot struct {
	MargenDefault      decimal.Decimal `json:"margen_default"`
	MarkupOperativo    decimal.Decimal `json:"markup_operativo"`
	FactorPerdida      decimal.Decimal `json:"factor_perdida"`
	MinutosPreparacion decimal.Decimal `json:"minutos_preparacion"`
	CostoHoraImpresion decimal.Decimal `json:"costo_hora_impresion"`
	TasaIVA            decimal.Decimal `json:"tasa_iva"`
	EstrategiaPrecio   string          `json:"estrategia_precio"`
	ModoReglaExclusiva string          `json:"modo_regla_exclusiva"`
}

type ContextoSnapshot struct {
	ProductoID     string  `json:"producto_id"`
	CategoriaID    string  `json:"categoria_id"`
	ClienteID      *string `json:"cliente_id,omitempty"`
	GrupoClienteID *string `json:"grupo_cliente_id,omitempty"`
}

type MargenSnapshot struct {
	Base            decimal.Decimal `json:"base"`
	Alcance         string          `json:"alcance,omitempty"`
	ReglaID         *string         `json:"regla_id,omitempty"`
	PorDefecto      bool            `json:"por_defecto"`
	Encontrado      bool            `json:"encontrado"`
	Ajuste          decimal.Decimal `json:"ajuste"`
	Efectivo        decimal.Decimal `json:"efectivo"`
	ReglasAplicadas []string        `json:"reglas_aplicadas"`
	Reemplazo       bool            `json:"reemplazo"`
}

type RedondeoSnapshot struct {
	Estrategia string          `json:"estrategia"`
	Paso       decimal.Decimal `json:"paso"`
	Puntos     []string        `json:"puntos"`
}

type PrecioSnapshot struct {
	Estrategia        string           `json:"estrategia"`
	Markup            decimal.Decimal  `json:"markup"`
	PrecioFormula     decimal.Decimal  `json:"precio_formula"`
	PrecioMinimoPieza *decimal.Decimal `json:"precio_minimo_pieza,omitempty"`
	MinimoAplicado    bool             `json:"minimo_aplicado"`
}

// LineaSnapshot is a breakdown line plus the catalog rows it was priced from.
type LineaSnapshot struct {
	LineaCotizacionResponse
	VersionID       string  `json:"version_id"`
	Version         int     `json:"version"`
	PrecioClienteID *string `json:"precio_cliente_id,omitempty"`
}
