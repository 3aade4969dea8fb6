package repository

import (
	"context"
	"time"

	"cotizador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionadoRepository is the SCD2 store for one versioned table.
// It has no Update: a change is always a new version.
type VersionadoRepository[PM model.ItemVersionado] interface {
	// Actual returns the current version of a logical item, active or not.
	Actual(ctx context.Context, serieID uuid.UUID) (PM, error)
	// Historial lists every version, newest first.
	Historial(ctx context.Context, serieID uuid.UUID) ([]PM, error)
	// Create inserts the first version of a new logical item.
	Create(ctx context.Context, tx *gorm.DB, item PM) error
	// NuevaVersion retires the current row and inserts a patched copy with
	// Version+1 in one transaction. Writers of the same item are serialized.
	NuevaVersion(ctx context.Context, serieID uuid.UUID, p model.Parche, versionEsperada *int) (PM, error)
	DB() *gorm.DB
}

type versionadoRepo[M any, PM interface {
	*M
	model.ItemVersionado
}] struct {
	db *gorm.DB
}

// NewVersionadoRepository builds the store for model M, e.g.
// NewVersionadoRepository[model.Material](db).
func NewVersionadoRepository[M any, PM interface {
	*M
	model.ItemVersionado
}](db *gorm.DB) VersionadoRepository[PM] {
	return &versionadoRepo[M, PM]{db: db}
}

func (r *versionadoRepo[M, PM]) DB() *gorm.DB { return r.db }

func (r *versionadoRepo[M, PM]) Actual(ctx context.Context, serieID uuid.UUID) (PM, error) {
	var m M
	err := r.db.WithContext(ctx).
		Where("serie_id = ? AND es_actual", serieID).
		First(PM(&m)).Error
	return PM(&m), err
}

func (r *versionadoRepo[M, PM]) Historial(ctx context.Context, serieID uuid.UUID) ([]PM, error) {
	var rows []M
	if err := r.db.WithContext(ctx).
		Where("serie_id = ?", serieID).
		Order("version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]PM, len(rows))
	for i := range rows {
		out[i] = PM(&rows[i])
	}
	return out, nil
}

func (r *versionadoRepo[M, PM]) Create(ctx context.Context, tx *gorm.DB, item PM) error {
	if tx == nil {
		tx = r.db
	}
	h := item.Cabecera()
	if h.SerieID == uuid.Nil {
		h.SerieID = uuid.New()
	}
	if h.ID == uuid.Nil {
		h.ID = h.SerieID
	}
	h.Version = 1
	h.EsActual = true
	return tx.WithContext(ctx).Create(item).Error
}

func (r *versionadoRepo[M, PM]) NuevaVersion(
	ctx context.Context,
	serieID uuid.UUID,
	p model.Parche,
	versionEsperada *int,
) (PM, error) {
	var nueva PM
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var actual M
		tabla := PM(&actual).TableName()

		// Blocks concurrent writers of this item until commit. The row lock
		// alone is not enough: a waiter would wake up to a row that is no
		// longer current and miss the version inserted by the winner.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", tabla+":"+serieID.String()).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("serie_id = ? AND es_actual", serieID).
			First(PM(&actual)).Error; err != nil {
			return err
		}

		cab := PM(&actual).Cabecera()
		if versionEsperada != nil && *versionEsperada != cab.Version {
			return ErrVersionConflict
		}

		if err := tx.Model(new(M)).
			Where("id = ?", cab.ID).
			Update("es_actual", false).Error; err != nil {
			return err
		}

		copia := actual
		pm := PM(&copia)
		pm.Aplicar(p)
		h := pm.Cabecera()
		h.ID = uuid.New()
		h.Version = cab.Version + 1
		h.EsActual = true
		h.CreatedAt = time.Time{}
		if err := tx.Create(pm).Error; err != nil {
			return err
		}
		nueva = pm
		return nil
	})
	return nueva, err
}
