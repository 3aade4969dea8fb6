package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfiguracionGlobalID is the primary key of the singleton row.
const ConfiguracionGlobalID = 1

// ConfiguracionGlobal holds the last-resort value of every resolution chain.
// All rates are fractions.
type ConfiguracionGlobal struct {
	ID                 int             `gorm:"primaryKey"`
	MargenDefault      decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	MarkupOperativo    decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	PasoRedondeo       decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	EstrategiaRedondeo string          `gorm:"type:varchar(20);not null"`
	PuntosRedondeo     string          `gorm:"type:varchar(60);not null"`
	FactorPerdida      decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	MinutosPreparacion decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostoHoraImpresion decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	TasaIVA            decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	EstrategiaPrecio   string          `gorm:"type:varchar(30);not null"`
	// ModoReglaExclusiva: ADITIVO | REEMPLAZO
	ModoReglaExclusiva string `gorm:"type:varchar(20);not null"`
	UpdatedAt          time.Time
}

func (ConfiguracionGlobal) TableName() string { return "configuracion_global" }
