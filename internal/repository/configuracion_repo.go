package repository

import (
	"context"

	"cotizador/internal/model"

	"gorm.io/gorm"
)

type ConfiguracionRepository interface {
	Get(ctx context.Context) (*model.ConfiguracionGlobal, error)
	// Save upserts the singleton row. Only the seed command writes it.
	Save(ctx context.Context, c *model.ConfiguracionGlobal) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) Get(ctx context.Context) (*model.ConfiguracionGlobal, error) {
	var c model.ConfiguracionGlobal
	err := r.db.WithContext(ctx).First(&c, "id = ?", model.ConfiguracionGlobalID).Error
	return &c, err
}

func (r *configuracionRepo) Save(ctx context.Context, c *model.ConfiguracionGlobal) error {
	c.ID = model.ConfiguracionGlobalID
	return r.db.WithContext(ctx).Save(c).Error
}
