package service

import (
	"context"
	"encoding/json"
	"time"

	"cotizador/internal/dto"
	"cotizador/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ExportacionService builds the render-ready payload of an issued quote for
// the PDF/Excel generators. Every figure comes from the frozen quote; nothing
// is recomputed.
type ExportacionService interface {
	// Generar builds the payload and refreshes its cache entry.
	Generar(ctx context.Context, cotizacionID uuid.UUID) (*dto.CotizacionExport, error)
	// Obtener serves the cached payload, generating it when absent.
	Obtener(ctx context.Context, cotizacionID uuid.UUID) (*dto.CotizacionExport, error)
}

type exportacionService struct {
	cotizaciones repository.CotizacionRepository
	productos    repository.ProductoRepository
	clientes     repository.ClienteRepository
	rdb          *redis.Client
	ttl          time.Duration
}

func NewExportacionService(
	cotizaciones repository.CotizacionRepository,
	productos repository.ProductoRepository,
	clientes repository.ClienteRepository,
	rdb *redis.Client,
	ttl time.Duration,
) ExportacionService {
	return &exportacionService{
		cotizaciones: cotizaciones,
		productos:    productos,
		clientes:     clientes,
		rdb:          rdb,
		ttl:          ttl,
	}
}

func exportacionKey(id uuid.UUID) string { return "exportacion:cotizacion:" + id.String() }

func (s *exportacionService) Obtener(ctx context.Context, cotizacionID uuid.UUID) (*dto.CotizacionExport, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, exportacionKey(cotizacionID)).Bytes(); err == nil {
			var exp dto.CotizacionExport
			if err := json.Unmarshal(cached, &exp); err == nil {
				return &exp, nil
			}
		}
	}
	return s.Generar(ctx, cotizacionID)
}

func (s *exportacionService) Generar(ctx context.Context, cotizacionID uuid.UUID) (*dto.CotizacionExport, error) {
	c, err := s.cotizaciones.FindByID(ctx, cotizacionID)
	if err != nil {
		return nil, noEncontrado(err, "cotizacion", cotizacionID.String())
	}
	p, err := s.productos.FindByID(ctx, c.ProductoID)
	if err != nil {
		return nil, noEncontrado(err, "producto", c.ProductoID.String())
	}

	exp := &dto.CotizacionExport{
		CotizacionID:   c.ID.String(),
		Numero:         c.Numero,
		Fecha:          c.CreatedAt.Format("2006-01-02"),
		ProductoID:     c.ProductoID.String(),
		ProductoNombre: p.Nombre,
		ClienteID:      uuidString(c.ClienteID),
		Cantidad:       c.Cantidad,
		Lineas:         make([]dto.LineaCotizacionResponse, 0, len(c.Items)),
		Subtotal:       c.Subtotal,
		MargenAplicado: c.MargenAplicado,
		MarkupAplicado: c.MarkupAplicado,
		AjusteDinamico: c.AjusteDinamico,
		PrecioFinal:    c.PrecioFinal,
		PrecioUnitario: precioUnitario(c.PrecioFinal, c.Cantidad),
		TasaIVA:        c.TasaIVA,
		MontoIVA:       c.MontoIVA,
		Total:          c.Total,
		GeneradoEn:     time.Now().UTC().Format(time.RFC3339),
	}
	if c.ClienteID != nil {
		cli, err := s.clientes.FindByID(ctx, *c.ClienteID)
		if err != nil {
			return nil, noEncontrado(err, "cliente", c.ClienteID.String())
		}
		exp.ClienteNombre = &cli.Nombre
	}
	for _, it := range c.Items {
		exp.Lineas = append(exp.Lineas, itemToResponse(it))
	}

	if s.rdb != nil {
		if b, err := json.Marshal(exp); err == nil {
			if err := s.rdb.Set(ctx, exportacionKey(cotizacionID), b, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Str("cotizacion_id", exp.CotizacionID).Msg("exportacion: no se pudo cachear")
			}
		}
	}
	return exp, nil
}
