package service

import (
	"context"

	"cotizador/internal/model"
	"cotizador/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// maxResolucionesParalelas bounds the lookups one quote runs at once.
const maxResolucionesParalelas = 8

// Seleccion is a validated option choice.
type Seleccion struct {
	Grupo  *model.GrupoOpcion
	ItemID uuid.UUID
}

// SolicitudCosto is a validated configuration ready to be costed.
type SolicitudCosto struct {
	Producto    *model.Producto
	Cantidad    decimal.Decimal
	ClienteID   *uuid.UUID
	Atributos   map[string]string
	Selecciones []Seleccion
	Config      *model.ConfiguracionGlobal
}

// LineaResuelta is a cost line plus its provenance.
type LineaResuelta struct {
	pricing.LineaCosto
	VersionID       uuid.UUID
	Version         int
	PrecioClienteID *uuid.UUID
}

// CostoService builds the cost breakdown of a configuration. Lines come out
// in declaration order: materials, printing run, setup, finishes.
type CostoService interface {
	CalcularLineas(ctx context.Context, sol SolicitudCosto) ([]LineaResuelta, error)
}

type costoService struct {
	precios     PrecioService
	concurrente bool
}

// NewCostoService builds the aggregator. With concurrente the independent
// lookups run in parallel; the output is identical either way.
func NewCostoService(precios PrecioService, concurrente bool) CostoService {
	return &costoService{precios: precios, concurrente: concurrente}
}

// tarea resolves the lines of one catalog reference.
type tarea func(ctx context.Context) ([]LineaResuelta, error)

func (s *costoService) CalcularLineas(ctx context.Context, sol SolicitudCosto) ([]LineaResuelta, error) {
	tareas := s.planificar(sol)
	resultados := make([][]LineaResuelta, len(tareas))

	if s.concurrente && len(tareas) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxResolucionesParalelas)
		for i, t := range tareas {
			g.Go(func() error {
				lineas, err := t(gctx)
				if err != nil {
					return err
				}
				resultados[i] = lineas
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, t := range tareas {
			lineas, err := t(ctx)
			if err != nil {
				return nil, err
			}
			resultados[i] = lineas
		}
	}

	var out []LineaResuelta
	for _, r := range resultados {
		out = append(out, r...)
	}
	return out, nil
}

func (s *costoService) planificar(sol SolicitudCosto) []tarea {
	var tareas []tarea
	p := sol.Producto

	for _, pm := range p.Materiales {
		tareas = append(tareas, s.tareaMaterial(sol, pm.MaterialID, pm.CantidadPorUnidad, pm.FactorDesperdicio))
	}

	impresionID := p.ImpresionID
	var acabados []uuid.UUID
	for _, pa := range p.Acabados {
		acabados = append(acabados, pa.AcabadoID)
	}
	for _, sel := range sol.Selecciones {
		switch sel.Grupo.Tipo {
		case model.GrupoMaterial:
			tareas = append(tareas, s.tareaMaterial(sol, sel.ItemID, sel.Grupo.CantidadPorUnidad, sel.Grupo.FactorDesperdicio))
		case model.GrupoImpresion:
			id := sel.ItemID
			impresionID = &id
		case model.GrupoAcabado:
			acabados = append(acabados, sel.ItemID)
		}
	}

	if impresionID != nil {
		tareas = append(tareas, s.tareaImpresion(sol, *impresionID))
	}
	for _, id := range acabados {
		tareas = append(tareas, s.tareaAcabado(sol, id))
	}
	return tareas
}

func resuelta(l pricing.LineaCosto, c *CostoResuelto) LineaResuelta {
	h := c.Item.Cabecera()
	r := LineaResuelta{LineaCosto: l, VersionID: h.ID, Version: h.Version}
	if c.PrecioCliente != nil {
		id := c.PrecioCliente.ID
		r.PrecioClienteID = &id
	}
	return r
}

func (s *costoService) tareaMaterial(sol SolicitudCosto, itemID uuid.UUID, porUnidad, desperdicio decimal.Decimal) tarea {
	return func(ctx context.Context) ([]LineaResuelta, error) {
		c, err := s.precios.ResolverCostoUnitario(ctx, model.TipoMaterial, itemID, sol.ClienteID, sol.Atributos)
		if err != nil {
			return nil, err
		}
		l := pricing.CostoMaterial(pricing.EntradaMaterial{
			ItemID:            itemID,
			Nombre:            nombreDe(c.Item),
			CostoUnitario:     c.CostoUnitario,
			CantidadPorUnidad: porUnidad,
			FactorDesperdicio: desperdicio,
		}, sol.Cantidad, sol.Config.FactorPerdida)
		return []LineaResuelta{resuelta(l, c)}, nil
	}
}

func (s *costoService) tareaImpresion(sol SolicitudCosto, itemID uuid.UUID) tarea {
	return func(ctx context.Context) ([]LineaResuelta, error) {
		c, err := s.precios.ResolverCostoUnitario(ctx, model.TipoImpresion, itemID, sol.ClienteID, sol.Atributos)
		if err != nil {
			return nil, err
		}
		imp := c.Item.(*model.Impresion)
		minutos := sol.Config.MinutosPreparacion
		if imp.MinutosPreparacion != nil {
			minutos = *imp.MinutosPreparacion
		}
		corrida, setup := pricing.CostoImpresion(pricing.EntradaImpresion{
			ItemID:             itemID,
			Nombre:             imp.Nombre,
			CostoUnitario:      c.CostoUnitario,
			Rendimiento:        imp.Rendimiento,
			MinutosPreparacion: minutos,
			CostoHora:          sol.Config.CostoHoraImpresion,
			CostoMinimo:        imp.CostoMinimo,
		}, sol.Cantidad)

		out := []LineaResuelta{resuelta(corrida, c)}
		if !setup.CostoTotal.IsZero() {
			// setup cost is never a customer price
			prep := resuelta(setup, c)
			prep.PrecioClienteID = nil
			out = append(out, prep)
		}
		return out, nil
	}
}

func (s *costoService) tareaAcabado(sol SolicitudCosto, itemID uuid.UUID) tarea {
	return func(ctx context.Context) ([]LineaResuelta, error) {
		c, err := s.precios.ResolverCostoUnitario(ctx, model.TipoAcabado, itemID, sol.ClienteID, sol.Atributos)
		if err != nil {
			return nil, err
		}
		ac := c.Item.(*model.Acabado)
		l, err := pricing.CostoAcabado(pricing.EntradaAcabado{
			ItemID:          itemID,
			Nombre:          ac.Nombre,
			TipoCalculo:     pricing.TipoCalculo(ac.TipoCalculo),
			CostoUnitario:   c.CostoUnitario,
			CostoMinimo:     ac.CostoMinimo,
			UnidadesPorLote: ac.UnidadesPorLote,
			UnidadesPorHora: ac.UnidadesPorHora,
			AreaM2:          sol.Producto.AreaM2(),
		}, sol.Cantidad)
		if err != nil {
			return nil, err
		}
		return []LineaResuelta{resuelta(l, c)}, nil
	}
}
