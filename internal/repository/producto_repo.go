package repository

import (
	"context"

	"cotizador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository reads product templates with everything pricing needs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID preloads the category, material and finish lines and the option
// groups with their items, each in declaration order.
func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Preload("Materiales", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC, id ASC") }).
		Preload("Acabados", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC, id ASC") }).
		Preload("GruposOpcion", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC, codigo ASC") }).
		Preload("GruposOpcion.Items").
		First(&p, "id = ?", id).Error
	return &p, err
}
