package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Categoria groups products and carries the category level of every
// pricing override chain. Nil fields defer to ConfiguracionGlobal.
type Categoria struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre             string    `gorm:"uniqueIndex;not null"`
	Descripcion        *string
	MargenDefault      *decimal.Decimal `gorm:"type:decimal(8,4)"`
	MarkupDefault      *decimal.Decimal `gorm:"type:decimal(8,4)"`
	PasoRedondeo       *decimal.Decimal `gorm:"type:decimal(10,4)"`
	EstrategiaRedondeo *string          `gorm:"type:varchar(20)"`
	PuntosRedondeo     *string          `gorm:"type:varchar(60)"`
	EstrategiaPrecio   *string          `gorm:"type:varchar(30)"`
	PrecioMinimoPieza  *decimal.Decimal `gorm:"type:decimal(14,4)"`
	TasaIVA            *decimal.Decimal `gorm:"type:decimal(6,4)"`
	Activo             bool             `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }
