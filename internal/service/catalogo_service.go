package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cotizador/internal/dto"
	"cotizador/internal/model"
	"cotizador/internal/pricing"
	"cotizador/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CatalogoService is the versioned catalog store. It never mutates a version
// in place: every change goes through NuevaVersion.
type CatalogoService interface {
	// Actual returns the current version. A missing item is a NotFoundError;
	// a deactivated one is an UnavailableItemError.
	Actual(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (model.ItemVersionado, error)
	ObtenerActual(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (*dto.VersionResponse, error)
	NuevaVersion(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID, req dto.NuevaVersionRequest) (*dto.VersionResponse, error)
	Historial(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (*dto.HistorialVersionesResponse, error)
	// PreciosCliente lists the current active overrides of tipo's customer
	// table for (clienteID, itemID), highest precedence first.
	PreciosCliente(ctx context.Context, tipo model.TipoCatalogo, clienteID, itemID uuid.UUID) ([]*model.PrecioCliente, error)
}

// CatalogoRepos groups the six versioned stores.
type CatalogoRepos struct {
	Materiales         repository.VersionadoRepository[*model.Material]
	Impresiones        repository.VersionadoRepository[*model.Impresion]
	Acabados           repository.VersionadoRepository[*model.Acabado]
	MaterialesCliente  repository.PrecioClienteRepository[*model.MaterialPrecioCliente]
	ImpresionesCliente repository.PrecioClienteRepository[*model.ImpresionPrecioCliente]
	AcabadosCliente    repository.PrecioClienteRepository[*model.AcabadoPrecioCliente]
}

type catalogoService struct {
	almacenes map[model.TipoCatalogo]almacen
	precios   map[model.TipoCatalogo]listadorPrecios
	rdb       *redis.Client
	ttl       time.Duration
}

// NewCatalogoService wires the stores. rdb may be nil, which disables caching.
func NewCatalogoService(repos CatalogoRepos, rdb *redis.Client, ttl time.Duration) CatalogoService {
	return &catalogoService{
		almacenes: map[model.TipoCatalogo]almacen{
			model.TipoMaterial:         nuevoAlmacen[model.Material, *model.Material](repos.Materiales),
			model.TipoImpresion:        nuevoAlmacen[model.Impresion, *model.Impresion](repos.Impresiones),
			model.TipoAcabado:          nuevoAlmacen[model.Acabado, *model.Acabado](repos.Acabados),
			model.TipoMaterialCliente:  nuevoAlmacen[model.MaterialPrecioCliente, *model.MaterialPrecioCliente](repos.MaterialesCliente),
			model.TipoImpresionCliente: nuevoAlmacen[model.ImpresionPrecioCliente, *model.ImpresionPrecioCliente](repos.ImpresionesCliente),
			model.TipoAcabadoCliente:   nuevoAlmacen[model.AcabadoPrecioCliente, *model.AcabadoPrecioCliente](repos.AcabadosCliente),
		},
		precios: map[model.TipoCatalogo]listadorPrecios{
			model.TipoMaterialCliente:  nuevoListador(repos.MaterialesCliente),
			model.TipoImpresionCliente: nuevoListador(repos.ImpresionesCliente),
			model.TipoAcabadoCliente:   nuevoListador(repos.AcabadosCliente),
		},
		rdb: rdb,
		ttl: ttl,
	}
}

func cacheKey(tipo model.TipoCatalogo, serieID uuid.UUID) string {
	return "catalogo:" + string(tipo) + ":" + serieID.String()
}

func (s *catalogoService) almacen(tipo model.TipoCatalogo) (almacen, error) {
	a, ok := s.almacenes[tipo]
	if !ok {
		return nil, pricing.NewValidationError("tipo", "tipo de catalogo desconocido: "+string(tipo))
	}
	return a, nil
}

func (s *catalogoService) Actual(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (model.ItemVersionado, error) {
	item, err := s.cargarActual(ctx, tipo, serieID)
	if err != nil {
		return nil, err
	}
	if !item.Cabecera().Activo {
		return nil, &pricing.UnavailableItemError{Entidad: string(tipo), ID: serieID.String(), Nombre: nombreDe(item)}
	}
	return item, nil
}

// cargarActual reads the current row through the cache, active or not.
func (s *catalogoService) cargarActual(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (model.ItemVersionado, error) {
	a, err := s.almacen(tipo)
	if err != nil {
		return nil, err
	}

	key := cacheKey(tipo, serieID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			item, decErr := a.decodificar(cached)
			if decErr == nil {
				return item, nil
			}
			log.Warn().Err(decErr).Str("key", key).Msg("catalogo: entrada de cache ilegible")
		}
	}

	item, err := a.actual(ctx, serieID)
	if err != nil {
		return nil, noEncontrado(err, string(tipo), serieID.String())
	}
	s.guardarCache(ctx, key, item)
	return item, nil
}

// guardarCache is best effort; a Redis outage only costs a DB read.
func (s *catalogoService) guardarCache(ctx context.Context, key string, item model.ItemVersionado) {
	if s.rdb == nil {
		return
	}
	if b, err := json.Marshal(item); err == nil {
		_ = s.rdb.Set(ctx, key, b, s.ttl).Err()
	}
}

func (s *catalogoService) ObtenerActual(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (*dto.VersionResponse, error) {
	item, err := s.Actual(ctx, tipo, serieID)
	if err != nil {
		return nil, err
	}
	resp := versionToResponse(tipo, item)
	return &resp, nil
}

func (s *catalogoService) NuevaVersion(
	ctx context.Context,
	tipo model.TipoCatalogo,
	serieID uuid.UUID,
	req dto.NuevaVersionRequest,
) (*dto.VersionResponse, error) {
	a, err := s.almacen(tipo)
	if err != nil {
		return nil, err
	}

	parche := model.Parche{
		CostoUnitario:      req.CostoUnitario,
		Activo:             req.Activo,
		Nombre:             req.Nombre,
		CostoMinimo:        req.CostoMinimo,
		Rendimiento:        req.Rendimiento,
		MinutosPreparacion: req.MinutosPreparacion,
		Prioridad:          req.Prioridad,
		Atributos:          req.Atributos,
	}
	item, err := a.nuevaVersion(ctx, serieID, parche, req.VersionEsperada)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, pricing.ErrVersionConflict
		}
		err = noEncontrado(err, string(tipo), serieID.String())
		if errors.Is(err, pricing.ErrNotFound) {
			return nil, err
		}
		return nil, &pricing.PersistenceError{Op: "nueva version de " + string(tipo), Err: err}
	}

	// Dropped rather than overwritten: concurrent writers commit and reach
	// this point in any order.
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, cacheKey(tipo, serieID)).Err(); err != nil {
			log.Warn().Err(err).Str("serie_id", serieID.String()).Msg("catalogo: no se pudo invalidar la cache")
		}
	}

	h := item.Cabecera()
	log.Info().
		Str("tipo", string(tipo)).
		Str("serie_id", serieID.String()).
		Int("version", h.Version).
		Str("costo_unitario", h.CostoUnitario.String()).
		Bool("activo", h.Activo).
		Msg("catalogo: nueva version")

	resp := versionToResponse(tipo, item)
	return &resp, nil
}

func (s *catalogoService) Historial(ctx context.Context, tipo model.TipoCatalogo, serieID uuid.UUID) (*dto.HistorialVersionesResponse, error) {
	a, err := s.almacen(tipo)
	if err != nil {
		return nil, err
	}
	items, err := a.historial(ctx, serieID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &pricing.NotFoundError{Entidad: string(tipo), ID: serieID.String()}
	}
	resp := &dto.HistorialVersionesResponse{Data: make([]dto.VersionResponse, 0, len(items))}
	for _, it := range items {
		resp.Data = append(resp.Data, versionToResponse(tipo, it))
	}
	return resp, nil
}

func (s *catalogoService) PreciosCliente(ctx context.Context, tipo model.TipoCatalogo, clienteID, itemID uuid.UUID) ([]*model.PrecioCliente, error) {
	l, ok := s.precios[tipo.PrecioCliente()]
	if !ok {
		return nil, pricing.NewValidationError("tipo", "sin precios por cliente: "+string(tipo))
	}
	return l.listar(ctx, clienteID, itemID)
}

// ── Type-erased adapters over the generic repositories ──────────────────────

type almacen interface {
	actual(ctx context.Context, serieID uuid.UUID) (model.ItemVersionado, error)
	historial(ctx context.Context, serieID uuid.UUID) ([]model.ItemVersionado, error)
	nuevaVersion(ctx context.Context, serieID uuid.UUID, p model.Parche, esperada *int) (model.ItemVersionado, error)
	decodificar(b []byte) (model.ItemVersionado, error)
}

type almacenVersionado[M any, PM interface {
	*M
	model.ItemVersionado
}] struct {
	repo repository.VersionadoRepository[PM]
}

func nuevoAlmacen[M any, PM interface {
	*M
	model.ItemVersionado
}](repo repository.VersionadoRepository[PM]) almacen {
	return &almacenVersionado[M, PM]{repo: repo}
}

func (a *almacenVersionado[M, PM]) actual(ctx context.Context, serieID uuid.UUID) (model.ItemVersionado, error) {
	item, err := a.repo.Actual(ctx, serieID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (a *almacenVersionado[M, PM]) historial(ctx context.Context, serieID uuid.UUID) ([]model.ItemVersionado, error) {
	rows, err := a.repo.Historial(ctx, serieID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ItemVersionado, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

func (a *almacenVersionado[M, PM]) nuevaVersion(ctx context.Context, serieID uuid.UUID, p model.Parche, esperada *int) (model.ItemVersionado, error) {
	item, err := a.repo.NuevaVersion(ctx, serieID, p, esperada)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (a *almacenVersionado[M, PM]) decodificar(b []byte) (model.ItemVersionado, error) {
	item := PM(new(M))
	if err := json.Unmarshal(b, item); err != nil {
		return nil, err
	}
	return item, nil
}

type listadorPrecios interface {
	listar(ctx context.Context, clienteID, itemID uuid.UUID) ([]*model.PrecioCliente, error)
}

type listadorGenerico[PM model.ItemPrecioCliente] struct {
	repo repository.PrecioClienteRepository[PM]
}

func nuevoListador[PM model.ItemPrecioCliente](repo repository.PrecioClienteRepository[PM]) listadorPrecios {
	return &listadorGenerico[PM]{repo: repo}
}

func (l *listadorGenerico[PM]) listar(ctx context.Context, clienteID, itemID uuid.UUID) ([]*model.PrecioCliente, error) {
	rows, err := l.repo.ListarActuales(ctx, clienteID, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.PrecioCliente, len(rows))
	for i, r := range rows {
		out[i] = r.Base()
	}
	return out, nil
}

// ── Mapping ─────────────────────────────────────────────────────────────────

func nombreDe(item model.ItemVersionado) string {
	switch v := item.(type) {
	case *model.Material:
		return v.Nombre
	case *model.Impresion:
		return v.Nombre
	case *model.Acabado:
		return v.Nombre
	}
	return ""
}

func versionToResponse(tipo model.TipoCatalogo, item model.ItemVersionado) dto.VersionResponse {
	h := item.Cabecera()
	resp := dto.VersionResponse{
		ID:            h.ID.String(),
		SerieID:       h.SerieID.String(),
		Tipo:          string(tipo),
		Version:       h.Version,
		EsActual:      h.EsActual,
		Activo:        h.Activo,
		CostoUnitario: h.CostoUnitario,
		Nombre:        nombreDe(item),
		CreatedAt:     h.CreatedAt.Format(time.RFC3339),
	}
	if pc, ok := item.(model.ItemPrecioCliente); ok {
		b := pc.Base()
		cliente := b.ClienteID.String()
		itemID := b.ItemID.String()
		prioridad := b.Prioridad
		resp.ClienteID = &cliente
		resp.ItemID = &itemID
		resp.Prioridad = &prioridad
		resp.Atributos = b.Atributos
	}
	return resp
}
