package model

import "github.com/shopspring/decimal"

// Material is a versioned raw material (paper, vinyl, ink...).
type Material struct {
	Versionado
	Nombre       string `gorm:"not null"`
	Tecnologia   string `gorm:"not null;default:''"`
	UnidadMedida string `gorm:"not null;default:'unidad'"`
}

func (Material) TableName() string { return "materiales" }

func (m *Material) Aplicar(p Parche) {
	m.aplicar(p)
	if p.Nombre != nil {
		m.Nombre = *p.Nombre
	}
}

// Impresion is a versioned printing option. Rendimiento is the number of
// finished units one run produces.
type Impresion struct {
	Versionado
	Nombre       string          `gorm:"not null"`
	Tecnologia   string          `gorm:"not null;default:''"`
	UnidadMedida string          `gorm:"not null;default:'pliego'"`
	Caras        int             `gorm:"not null"`
	Rendimiento  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// MinutosPreparacion overrides the global setup time when set.
	MinutosPreparacion *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CostoMinimo        decimal.Decimal  `gorm:"type:decimal(14,4);not null"`
}

func (Impresion) TableName() string { return "impresiones" }

func (i *Impresion) Aplicar(p Parche) {
	i.aplicar(p)
	if p.Nombre != nil {
		i.Nombre = *p.Nombre
	}
	if p.Rendimiento != nil {
		i.Rendimiento = *p.Rendimiento
	}
	if p.MinutosPreparacion != nil {
		v := *p.MinutosPreparacion
		i.MinutosPreparacion = &v
	}
	if p.CostoMinimo != nil {
		i.CostoMinimo = *p.CostoMinimo
	}
}

// Acabado is a versioned finish. TipoCalculo: PER_UNIT | PER_M2 | PER_LOT | PER_HOUR
type Acabado struct {
	Versionado
	Nombre          string          `gorm:"not null"`
	TipoCalculo     string          `gorm:"type:varchar(20);not null"`
	CostoMinimo     decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	UnidadesPorLote decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnidadesPorHora decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (Acabado) TableName() string { return "acabados" }

func (a *Acabado) Aplicar(p Parche) {
	a.aplicar(p)
	if p.Nombre != nil {
		a.Nombre = *p.Nombre
	}
	if p.CostoMinimo != nil {
		a.CostoMinimo = *p.CostoMinimo
	}
}
