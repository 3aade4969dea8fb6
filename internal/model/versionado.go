package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoCatalogo names one of the versioned tables.
type TipoCatalogo string

const (
	TipoMaterial         TipoCatalogo = "MATERIAL"
	TipoImpresion        TipoCatalogo = "IMPRESION"
	TipoAcabado          TipoCatalogo = "ACABADO"
	TipoMaterialCliente  TipoCatalogo = "MATERIAL_CLIENTE"
	TipoImpresionCliente TipoCatalogo = "IMPRESION_CLIENTE"
	TipoAcabadoCliente   TipoCatalogo = "ACABADO_CLIENTE"
)

// Valido reports whether t is a known kind.
func (t TipoCatalogo) Valido() bool {
	switch t {
	case TipoMaterial, TipoImpresion, TipoAcabado,
		TipoMaterialCliente, TipoImpresionCliente, TipoAcabadoCliente:
		return true
	}
	return false
}

// PrecioCliente returns the customer override kind of a catalog kind.
func (t TipoCatalogo) PrecioCliente() TipoCatalogo {
	switch t {
	case TipoMaterial:
		return TipoMaterialCliente
	case TipoImpresion:
		return TipoImpresionCliente
	case TipoAcabado:
		return TipoAcabadoCliente
	}
	return t
}

// Versionado is the SCD2 header shared by every versioned table.
// ID identifies the row (one version); SerieID identifies the logical item
// across all of its versions. Exactly one row per SerieID has EsActual=true,
// enforced by a partial unique index. Rows are never updated except to flip
// EsActual from true to false when a newer version is written.
type Versionado struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SerieID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Version       int             `gorm:"not null"`
	EsActual      bool            `gorm:"not null"`
	Activo        bool            `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CreatedAt     time.Time
}

// Cabecera gives generic code access to the embedded header.
func (v *Versionado) Cabecera() *Versionado { return v }

func (v *Versionado) aplicar(p Parche) {
	if p.CostoUnitario != nil {
		v.CostoUnitario = *p.CostoUnitario
	}
	if p.Activo != nil {
		v.Activo = *p.Activo
	}
}

// ItemVersionado is implemented by pointers to every versioned model.
type ItemVersionado interface {
	Cabecera() *Versionado
	Aplicar(p Parche)
	TableName() string
}

// Parche carries the fields a new version changes. Nil fields are copied
// from the current version. Fields that do not exist on a kind are ignored.
type Parche struct {
	CostoUnitario      *decimal.Decimal
	Activo             *bool
	Nombre             *string
	CostoMinimo        *decimal.Decimal
	Rendimiento        *decimal.Decimal
	MinutosPreparacion *decimal.Decimal
	Prioridad          *int
	Atributos          map[string]any
}
