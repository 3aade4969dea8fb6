package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// CotizacionFilter is bound from query string of GET /v1/cotizaciones.
type CotizacionFilter struct {
	ClienteID  string `form:"cliente_id"  validate:"omitempty,uuid"`
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// CotizacionListItem is returned inside CotizacionListResponse.
type CotizacionListItem struct {
	ID          string          `json:"id"`
	Numero      int64           `json:"numero"`
	ProductoID  string          `json:"producto_id"`
	ClienteID   *string         `json:"cliente_id,omitempty"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	PrecioFinal decimal.Decimal `json:"precio_final"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   string          `json:"created_at"`
}

type CotizacionListResponse struct {
	Data  []CotizacionListItem `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SeleccionRequest picks one item of a product option group.
type SeleccionRequest struct {
	Grupo  string `json:"grupo"   validate:"required"`
	ItemID string `json:"item_id" validate:"required,uuid"`
}

// CotizacionRequest is a fully specified configuration to price.
type CotizacionRequest struct {
	ProductoID string             `json:"producto_id" validate:"required,uuid"`
	ClienteID  *string            `json:"cliente_id"  validate:"omitempty,uuid"`
	Cantidad   decimal.Decimal    `json:"cantidad"    validate:"required,gt=0"`
	Opciones   []SeleccionRequest `json:"opciones"    validate:"omitempty,dive"`
	// Atributos restrict customer price overrides (e.g. {"caras": "2"}).
	Atributos map[string]string `json:"atributos,omitempty"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaCotizacionResponse struct {
	Orden         int             `json:"orden"`
	Tipo          string          `json:"tipo"`
	Nombre        string          `json:"nombre"`
	ItemID        string          `json:"item_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	CostoTotal    decimal.Decimal `json:"costo_total"`
}

// CotizacionResponse is returned by the preview and by the persisted quote
// endpoints. ID, Numero and CreatedAt are empty for a preview.
type CotizacionResponse struct {
	ID                 string                    `json:"id,omitempty"`
	Numero             int64                     `json:"numero,omitempty"`
	ProductoID         string                    `json:"producto_id"`
	ClienteID          *string                   `json:"cliente_id,omitempty"`
	Cantidad           decimal.Decimal           `json:"cantidad"`
	Lineas             []LineaCotizacionResponse `json:"lineas"`
	Subtotal           decimal.Decimal           `json:"subtotal"`
	MargenBase         decimal.Decimal           `json:"margen_base"`
	AjusteDinamico     decimal.Decimal           `json:"ajuste_dinamico"`
	MargenAplicado     decimal.Decimal           `json:"margen_aplicado"`
	MarkupAplicado     decimal.Decimal           `json:"markup_aplicado"`
	EstrategiaPrecio   string                    `json:"estrategia_precio"`
	EstrategiaRedondeo string                    `json:"estrategia_redondeo"`
	PasoRedondeo       decimal.Decimal           `json:"paso_redondeo"`
	MinimoAplicado     bool                      `json:"minimo_aplicado"`
	PrecioFinal        decimal.Decimal           `json:"precio_final"`
	PrecioUnitario     decimal.Decimal           `json:"precio_unitario"`
	TasaIVA            decimal.Decimal           `json:"tasa_iva"`
	MontoIVA           decimal.Decimal           `json:"monto_iva"`
	Total              decimal.Decimal           `json:"total"`
	ReglasAplicadas    []string                  `json:"reglas_aplicadas"`
	CreatedAt          string                    `json:"created_at,omitempty"`
}
