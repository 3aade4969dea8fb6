package dto

import "github.com/shopspring/decimal"

// NuevaVersionRequest patches the current version into a new one. Omitted
// fields are carried over. Fields that do not exist on the item kind are
// ignored. VersionEsperada enables an optimistic check.
type NuevaVersionRequest struct {
	CostoUnitario      *decimal.Decimal `json:"costo_unitario"      validate:"omitempty,gte=0"`
	Activo             *bool            `json:"activo"`
	Nombre             *string          `json:"nombre"              validate:"omitempty,min=1,max=200"`
	CostoMinimo        *decimal.Decimal `json:"costo_minimo"        validate:"omitempty,gte=0"`
	Rendimiento        *decimal.Decimal `json:"rendimiento"         validate:"omitempty,gt=0"`
	MinutosPreparacion *decimal.Decimal `json:"minutos_preparacion" validate:"omitempty,gte=0"`
	Prioridad          *int             `json:"prioridad"`
	Atributos          map[string]any   `json:"atributos"`
	VersionEsperada    *int             `json:"version_esperada"    validate:"omitempty,min=1"`
}

// VersionResponse is one version of a catalog item or customer override.
type VersionResponse struct {
	ID            string          `json:"id"`
	SerieID       string          `json:"serie_id"`
	Tipo          string          `json:"tipo"`
	Version       int             `json:"version"`
	EsActual      bool            `json:"es_actual"`
	Activo        bool            `json:"activo"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Nombre        string          `json:"nombre,omitempty"`
	// Customer override fields
	ClienteID *string        `json:"cliente_id,omitempty"`
	ItemID    *string        `json:"item_id,omitempty"`
	Prioridad *int           `json:"prioridad,omitempty"`
	Atributos map[string]any `json:"atributos,omitempty"`
	CreatedAt string         `json:"created_at"`
}

type HistorialVersionesResponse struct {
	Data []VersionResponse `json:"data"`
}
