package model

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PrecioCliente is a customer-specific unit cost for one catalog item.
// ItemID is the catalog item's SerieID. Lower Prioridad wins. Atributos
// restricts the override to requests carrying the same attribute values
// (e.g. {"caras": "2"}); an empty map matches every request.
type PrecioCliente struct {
	Versionado
	ClienteID uuid.UUID         `gorm:"type:uuid;not null;index:idx_precio_cliente_item"`
	ItemID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_precio_cliente_item"`
	Prioridad int               `gorm:"not null"`
	Atributos datatypes.JSONMap `gorm:"type:jsonb"`
}

func (pc *PrecioCliente) aplicarCliente(p Parche) {
	pc.aplicar(p)
	if p.Prioridad != nil {
		pc.Prioridad = *p.Prioridad
	}
	if p.Atributos != nil {
		pc.Atributos = datatypes.JSONMap(p.Atributos)
	}
}

// Coincide reports whether every override attribute is present in attrs
// with the same value.
func (pc *PrecioCliente) Coincide(attrs map[string]string) bool {
	for k, v := range pc.Atributos {
		got, ok := attrs[k]
		if !ok || got != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// Base returns the shared override fields.
func (pc *PrecioCliente) Base() *PrecioCliente { return pc }

type MaterialPrecioCliente struct{ PrecioCliente }

func (MaterialPrecioCliente) TableName() string { return "materiales_precio_cliente" }

func (m *MaterialPrecioCliente) Aplicar(p Parche) { m.aplicarCliente(p) }

type ImpresionPrecioCliente struct{ PrecioCliente }

func (ImpresionPrecioCliente) TableName() string { return "impresiones_precio_cliente" }

func (i *ImpresionPrecioCliente) Aplicar(p Parche) { i.aplicarCliente(p) }

type AcabadoPrecioCliente struct{ PrecioCliente }

func (AcabadoPrecioCliente) TableName() string { return "acabados_precio_cliente" }

func (a *AcabadoPrecioCliente) Aplicar(p Parche) { a.aplicarCliente(p) }

// ItemPrecioCliente is implemented by pointers to the three override models.
type ItemPrecioCliente interface {
	ItemVersionado
	Base() *PrecioCliente
}
