package dto

import "github.com/shopspring/decimal"

// CotizacionExport is the render-ready payload consumed by the PDF/Excel
// generators. They render it as is and never recompute any figure.
type CotizacionExport struct {
	CotizacionID   string                    `json:"cotizacion_id"`
	Numero         int64                     `json:"numero"`
	Fecha          string                    `json:"fecha"`
	ProductoID     string                    `json:"producto_id"`
	ProductoNombre string                    `json:"producto_nombre"`
	ClienteID      *string                   `json:"cliente_id,omitempty"`
	ClienteNombre  *string                   `json:"cliente_nombre,omitempty"`
	Cantidad       decimal.Decimal           `json:"cantidad"`
	Lineas         []LineaCotizacionResponse `json:"lineas"`
	Subtotal       decimal.Decimal           `json:"subtotal"`
	MargenAplicado decimal.Decimal           `json:"margen_aplicado"`
	MarkupAplicado decimal.Decimal           `json:"markup_aplicado"`
	AjusteDinamico decimal.Decimal           `json:"ajuste_dinamico"`
	PrecioFinal    decimal.Decimal           `json:"precio_final"`
	PrecioUnitario decimal.Decimal           `json:"precio_unitario"`
	TasaIVA        decimal.Decimal           `json:"tasa_iva"`
	MontoIVA       decimal.Decimal           `json:"monto_iva"`
	Total          decimal.Decimal           `json:"total"`
	GeneradoEn     string                    `json:"generado_en"`
}
