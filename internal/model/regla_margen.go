package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReglaMargen is a fixed margin for one scope target.
// Alcance: GLOBAL | CATEGORY | PRODUCT | CUSTOMER | CUSTOMER_GROUP
// ObjetivoID is nil for GLOBAL. Margen is a fraction (0.30 = 30%).
type ReglaMargen struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Alcance    string          `gorm:"type:varchar(20);not null;index:idx_regla_margen_objetivo"`
	ObjetivoID *uuid.UUID      `gorm:"type:uuid;index:idx_regla_margen_objetivo"`
	Margen     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Activo     bool            `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ReglaMargen) TableName() string { return "reglas_margen" }

// ReglaMargenDinamica adjusts the margin when its thresholds hold.
// Thresholds are ANDed; a nil threshold always holds.
type ReglaMargenDinamica struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre         string           `gorm:"not null"`
	Alcance        string           `gorm:"type:varchar(20);not null"`
	ObjetivoID     *uuid.UUID       `gorm:"type:uuid"`
	CantidadMinima *decimal.Decimal `gorm:"type:decimal(14,4)"`
	SubtotalMinimo *decimal.Decimal `gorm:"type:decimal(14,4)"`
	Ajuste         decimal.Decimal  `gorm:"type:decimal(8,4);not null"`
	Prioridad      int              `gorm:"not null"`
	Acumulable     bool             `gorm:"not null"`
	Activo         bool             `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ReglaMargenDinamica) TableName() string { return "reglas_margen_dinamicas" }
