package repository

import (
	"context"

	"cotizador/internal/dto"
	"cotizador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CotizacionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Cotizacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cotizacion, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type cotizacionRepo struct{ db *gorm.DB }

func NewCotizacionRepository(db *gorm.DB) CotizacionRepository { return &cotizacionRepo{db: db} }

func (r *cotizacionRepo) DB() *gorm.DB { return r.db }

func (r *cotizacionRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cotizacion) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *cotizacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cotizacion, error) {
	var c model.Cotizacion
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		First(&c, "id = ?", id).Error
	return &c, err
}

// NextNumero draws from a sequence inside the caller's transaction; numbers
// are unique but a rolled back quote leaves a gap.
func (r *cotizacionRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('cotizaciones_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *cotizacionRepo) List(ctx context.Context, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var rows []model.Cotizacion
	var total int64

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Cotizacion{})
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("numero DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
