package repository

import (
	"context"

	"cotizador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReglaMargenRepository loads the active rules that can apply to a quote.
// objetivos are the concrete targets of the quote (product, category,
// customer, group); GLOBAL rules are always included.
type ReglaMargenRepository interface {
	ListFijasActivas(ctx context.Context, objetivos []uuid.UUID) ([]model.ReglaMargen, error)
	ListDinamicasActivas(ctx context.Context, objetivos []uuid.UUID) ([]model.ReglaMargenDinamica, error)
}

type reglaMargenRepo struct{ db *gorm.DB }

func NewReglaMargenRepository(db *gorm.DB) ReglaMargenRepository { return &reglaMargenRepo{db: db} }

func (r *reglaMargenRepo) ListFijasActivas(ctx context.Context, objetivos []uuid.UUID) ([]model.ReglaMargen, error) {
	var rows []model.ReglaMargen
	err := r.porObjetivo(ctx, objetivos).Find(&rows).Error
	return rows, err
}

func (r *reglaMargenRepo) ListDinamicasActivas(ctx context.Context, objetivos []uuid.UUID) ([]model.ReglaMargenDinamica, error) {
	var rows []model.ReglaMargenDinamica
	err := r.porObjetivo(ctx, objetivos).Find(&rows).Error
	return rows, err
}

func (r *reglaMargenRepo) porObjetivo(ctx context.Context, objetivos []uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Where("activo")
	if len(objetivos) == 0 {
		return q.Where("alcance = ?", "GLOBAL")
	}
	return q.Where("alcance = ? OR objetivo_id IN ?", "GLOBAL", objetivos)
}
