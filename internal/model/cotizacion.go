package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrCotizacionInmutable is returned by the hooks below.
var ErrCotizacionInmutable = errors.New("las cotizaciones emitidas no se modifican ni se eliminan")

// Column scales of cotizaciones and cotizacion_items. Figures are rounded to
// these before a quote is returned or stored so both agree.
const (
	EscalaMonto  = 2 // precio_final, monto_iva, total
	EscalaCosto  = 4 // subtotal, cantidades, costos de linea
	EscalaFactor = 4 // margenes, markup, tasa_iva, paso_redondeo
)

// Cotizacion is an issued quote. Every figure is frozen at creation time and
// Snapshot records the inputs that produced them; nothing here references a
// mutable catalog row.
type Cotizacion struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero             int64           `gorm:"uniqueIndex;not null"`
	ProductoID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID          *uuid.UUID      `gorm:"type:uuid;index"`
	Cantidad           decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	MargenAplicado     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	MarkupAplicado     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	AjusteDinamico     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	PrecioFinal        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TasaIVA            decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	MontoIVA           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total              decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	EstrategiaPrecio   string          `gorm:"type:varchar(30);not null"`
	EstrategiaRedondeo string          `gorm:"type:varchar(20);not null"`
	PasoRedondeo       decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	Snapshot           datatypes.JSON  `gorm:"type:jsonb;not null"`
	CreatedAt          time.Time

	Items []CotizacionItem `gorm:"foreignKey:CotizacionID"`
}

func (Cotizacion) TableName() string { return "cotizaciones" }

func (*Cotizacion) BeforeUpdate(*gorm.DB) error { return ErrCotizacionInmutable }
func (*Cotizacion) BeforeDelete(*gorm.DB) error { return ErrCotizacionInmutable }

// CotizacionItem is one line of the frozen breakdown.
// TipoItem: MATERIAL | IMPRESION | PREPARACION | ACABADO
type CotizacionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CotizacionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Orden         int             `gorm:"not null"`
	TipoItem      string          `gorm:"type:varchar(20);not null"`
	Nombre        string          `gorm:"not null"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CostoTotal    decimal.Decimal `gorm:"type:decimal(14,4);not null"`
}

func (CotizacionItem) TableName() string { return "cotizacion_items" }

func (*CotizacionItem) BeforeUpdate(*gorm.DB) error { return ErrCotizacionInmutable }
func (*CotizacionItem) BeforeDelete(*gorm.DB) error { return ErrCotizacionInmutable }
