package repository

import (
	"context"

	"cotizador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrecioClienteRepository is a versioned store of customer overrides with a
// lookup by (customer, item).
type PrecioClienteRepository[PM model.ItemPrecioCliente] interface {
	VersionadoRepository[PM]
	// ListarActuales returns the current, active overrides of one customer for
	// one catalog item, in precedence order.
	ListarActuales(ctx context.Context, clienteID, itemID uuid.UUID) ([]PM, error)
}

type precioClienteRepo[M any, PM interface {
	*M
	model.ItemPrecioCliente
}] struct {
	*versionadoRepo[M, PM]
}

func NewPrecioClienteRepository[M any, PM interface {
	*M
	model.ItemPrecioCliente
}](db *gorm.DB) PrecioClienteRepository[PM] {
	return &precioClienteRepo[M, PM]{versionadoRepo: &versionadoRepo[M, PM]{db: db}}
}

func (r *precioClienteRepo[M, PM]) ListarActuales(ctx context.Context, clienteID, itemID uuid.UUID) ([]PM, error) {
	var rows []M
	if err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND item_id = ? AND es_actual AND activo", clienteID, itemID).
		Order("prioridad ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]PM, len(rows))
	for i := range rows {
		out[i] = PM(&rows[i])
	}
	return out, nil
}
