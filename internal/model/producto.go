package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable configuration template. Catalog references
// (ImpresionID, MaterialID, AcabadoID, option items) hold SerieIDs so they
// always resolve to the current version at quote time.
// Override fields are nil when the product defers to its category.
type Producto struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string     `gorm:"index;not null"`
	CategoriaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ImpresionID *uuid.UUID `gorm:"type:uuid"`
	// AnchoMM × AltoMM is the finished piece size used by PER_M2 finishes.
	AnchoMM decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AltoMM  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	MargenDefault      *decimal.Decimal `gorm:"type:decimal(8,4)"`
	MarkupDefault      *decimal.Decimal `gorm:"type:decimal(8,4)"`
	PasoRedondeo       *decimal.Decimal `gorm:"type:decimal(10,4)"`
	EstrategiaRedondeo *string          `gorm:"type:varchar(20)"`
	PuntosRedondeo     *string          `gorm:"type:varchar(60)"`
	EstrategiaPrecio   *string          `gorm:"type:varchar(30)"`
	PrecioMinimoPieza  *decimal.Decimal `gorm:"type:decimal(14,4)"`
	TasaIVA            *decimal.Decimal `gorm:"type:decimal(6,4)"`

	Activo    bool `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Categoria    Categoria          `gorm:"foreignKey:CategoriaID"`
	Materiales   []ProductoMaterial `gorm:"foreignKey:ProductoID"`
	Acabados     []ProductoAcabado  `gorm:"foreignKey:ProductoID"`
	GruposOpcion []GrupoOpcion      `gorm:"foreignKey:ProductoID"`
}

func (Producto) TableName() string { return "productos" }

var milMM2PorM2 = decimal.NewFromInt(1_000_000)

// AreaM2 is the area of one finished piece in square meters.
func (p *Producto) AreaM2() decimal.Decimal {
	return p.AnchoMM.Mul(p.AltoMM).Div(milMM2PorM2)
}

// ProductoMaterial is a required material line.
type ProductoMaterial struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID        uuid.UUID       `gorm:"type:uuid;not null"`
	CantidadPorUnidad decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	FactorDesperdicio decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	Orden             int             `gorm:"not null"`
}

func (ProductoMaterial) TableName() string { return "productos_materiales" }

// ProductoAcabado is a finish always applied to the product.
type ProductoAcabado struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	AcabadoID  uuid.UUID `gorm:"type:uuid;not null"`
	Orden      int       `gorm:"not null"`
}

func (ProductoAcabado) TableName() string { return "productos_acabados" }

// Tipos de grupo de opciones.
const (
	GrupoMaterial  = "MATERIAL"
	GrupoImpresion = "IMPRESION"
	GrupoAcabado   = "ACABADO"
)

// GrupoOpcion is a choice the quote request makes (paper stock, sides,
// lamination...). Requerido groups need a selection; Multiple allows more
// than one. CantidadPorUnidad and FactorDesperdicio apply to MATERIAL groups.
type GrupoOpcion struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_grupo_opcion_codigo"`
	Codigo            string          `gorm:"not null;uniqueIndex:idx_grupo_opcion_codigo"`
	Nombre            string          `gorm:"not null"`
	Tipo              string          `gorm:"type:varchar(20);not null"`
	Requerido         bool            `gorm:"not null"`
	Multiple          bool            `gorm:"not null"`
	CantidadPorUnidad decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	FactorDesperdicio decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	Orden             int             `gorm:"not null"`

	Items []GrupoOpcionItem `gorm:"foreignKey:GrupoOpcionID"`
}

func (GrupoOpcion) TableName() string { return "grupos_opcion" }

// Contiene reports whether itemID is one of the group's choices.
func (g *GrupoOpcion) Contiene(itemID uuid.UUID) bool {
	for _, it := range g.Items {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}

type GrupoOpcionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GrupoOpcionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID `gorm:"type:uuid;not null"`
}

func (GrupoOpcionItem) TableName() string { return "grupos_opcion_items" }
