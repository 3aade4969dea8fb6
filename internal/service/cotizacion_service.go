package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"cotizador/internal/dto"
	"cotizador/internal/model"
	"cotizador/internal/pricing"
	"cotizador/internal/repository"
	"cotizador/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CotizacionService assembles quotes. Calcular is a side-effect-free preview;
// Crear prices the same way and freezes the result.
type CotizacionService interface {
	Calcular(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error)
	Crear(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CotizacionResponse, error)
	Listar(ctx context.Context, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error)
}

type cotizacionService struct {
	productos    repository.ProductoRepository
	clientes     repository.ClienteRepository
	cotizaciones repository.CotizacionRepository
	config       ConfiguracionService
	costos       CostoService
	margenes     MargenService
	dispatcher   *worker.Dispatcher
}

// NewCotizacionService wires the assembler. dispatcher may be nil, which
// skips export precomputation.
func NewCotizacionService(
	productos repository.ProductoRepository,
	clientes repository.ClienteRepository,
	cotizaciones repository.CotizacionRepository,
	config ConfiguracionService,
	costos CostoService,
	margenes MargenService,
	dispatcher *worker.Dispatcher,
) CotizacionService {
	return &cotizacionService{
		productos:    productos,
		clientes:     clientes,
		cotizaciones: cotizaciones,
		config:       config,
		costos:       costos,
		margenes:     margenes,
		dispatcher:   dispatcher,
	}
}

func (s *cotizacionService) Calcular(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error) {
	c, snap, err := s.computar(ctx, req)
	if err != nil {
		return nil, err
	}
	return cotizacionToResponse(c, snap), nil
}

func (s *cotizacionService) Crear(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error) {
	c, snap, err := s.computar(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, &pricing.PersistenceError{Op: "serializar snapshot", Err: err}
	}
	c.Snapshot = datatypes.JSON(raw)
	c.ID = uuid.New()

	err = runTx(ctx, s.cotizaciones.DB(), func(tx *gorm.DB) error {
		numero, err := s.cotizaciones.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		c.Numero = numero
		return s.cotizaciones.Create(ctx, tx, c)
	})
	if err != nil {
		return nil, &pricing.PersistenceError{Op: "crear cotizacion", Err: err}
	}

	log.Info().
		Str("cotizacion_id", c.ID.String()).
		Int64("numero", c.Numero).
		Str("producto_id", c.ProductoID.String()).
		Str("cantidad", c.Cantidad.String()).
		Str("precio_final", c.PrecioFinal.String()).
		Str("total", c.Total.String()).
		Msg("cotizacion emitida")

	if s.dispatcher != nil {
		payload := worker.ExportacionJobPayload{CotizacionID: c.ID.String()}
		if err := s.dispatcher.EnqueueExportacion(ctx, payload); err != nil {
			log.Warn().Err(err).Str("cotizacion_id", c.ID.String()).Msg("cotizacion: no se pudo encolar la exportacion")
		}
	}

	return cotizacionToResponse(c, snap), nil
}

func (s *cotizacionService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CotizacionResponse, error) {
	c, err := s.cotizaciones.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cotizacion", id.String())
	}
	var snap dto.CotizacionSnapshot
	if len(c.Snapshot) > 0 {
		if err := json.Unmarshal(c.Snapshot, &snap); err != nil {
			return nil, &pricing.PersistenceError{Op: "leer snapshot", Err: err}
		}
	}
	return cotizacionToResponse(c, &snap), nil
}

func (s *cotizacionService) Listar(ctx context.Context, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error) {
	rows, total, err := s.cotizaciones.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.CotizacionListResponse{
		Data:  make([]dto.CotizacionListItem, 0, len(rows)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, c := range rows {
		resp.Data = append(resp.Data, dto.CotizacionListItem{
			ID:          c.ID.String(),
			Numero:      c.Numero,
			ProductoID:  c.ProductoID.String(),
			ClienteID:   uuidString(c.ClienteID),
			Cantidad:    c.Cantidad,
			PrecioFinal: c.PrecioFinal,
			Total:       c.Total,
			CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// ── Pipeline ────────────────────────────────────────────────────────────────

// computar validates the request, resolves every input and runs the engine.
// It reads but never writes.
func (s *cotizacionService) computar(ctx context.Context, req dto.CotizacionRequest) (*model.Cotizacion, *dto.CotizacionSnapshot, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, nil, pricing.NewValidationError("producto_id", "uuid invalido")
	}
	var clienteID *uuid.UUID
	if req.ClienteID != nil && *req.ClienteID != "" {
		id, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, nil, pricing.NewValidationError("cliente_id", "uuid invalido")
		}
		clienteID = &id
	}
	if !req.Cantidad.IsPositive() {
		return nil, nil, pricing.NewValidationError("cantidad", "debe ser mayor a cero")
	}
	if !req.Cantidad.Equal(req.Cantidad.Round(model.EscalaCosto)) {
		return nil, nil, pricing.NewValidationError("cantidad", "admite hasta 4 decimales")
	}

	producto, err := s.productos.FindByID(ctx, productoID)
	if err != nil {
		return nil, nil, noEncontrado(err, "producto", productoID.String())
	}
	if !producto.Activo {
		return nil, nil, &pricing.UnavailableItemError{Entidad: "producto", ID: producto.ID.String(), Nombre: producto.Nombre}
	}
	if !producto.Categoria.Activo {
		return nil, nil, &pricing.UnavailableItemError{Entidad: "categoria", ID: producto.CategoriaID.String(), Nombre: producto.Categoria.Nombre}
	}

	selecciones, err := validarSelecciones(producto, req.Opciones)
	if err != nil {
		return nil, nil, err
	}

	contexto := pricing.ContextoAlcance{ProductoID: producto.ID, CategoriaID: producto.CategoriaID}
	if clienteID != nil {
		cliente, err := s.clientes.FindByID(ctx, *clienteID)
		if err != nil {
			return nil, nil, noEncontrado(err, "cliente", clienteID.String())
		}
		if !cliente.Activo {
			return nil, nil, &pricing.UnavailableItemError{Entidad: "cliente", ID: cliente.ID.String(), Nombre: cliente.Nombre}
		}
		contexto.ClienteID = clienteID
		contexto.GrupoClienteID = cliente.GrupoClienteID
	}

	cfg, err := s.config.Obtener(ctx)
	if err != nil {
		return nil, nil, err
	}

	resueltas, err := s.costos.CalcularLineas(ctx, SolicitudCosto{
		Producto:    producto,
		Cantidad:    req.Cantidad,
		ClienteID:   clienteID,
		Atributos:   req.Atributos,
		Selecciones: selecciones,
		Config:      cfg,
	})
	if err != nil {
		return nil, nil, err
	}

	params, err := resolverParametros(producto, cfg)
	if err != nil {
		return nil, nil, err
	}
	reglas, err := s.margenes.Cargar(ctx, contexto)
	if err != nil {
		return nil, nil, err
	}

	lineas := make([]pricing.LineaCosto, len(resueltas))
	for i, r := range resueltas {
		lineas[i] = r.LineaCosto
	}
	res, err := pricing.Calcular(pricing.Entrada{
		Cantidad:           req.Cantidad,
		Lineas:             lineas,
		Contexto:           contexto,
		ReglasFijas:        reglas.Fijas,
		ReglasDinamicas:    reglas.Dinamicas,
		MargenesPorDefecto: params.defs,
		ModoExclusiva:      params.modo,
		Estrategia:         params.estrategia,
		Markup:             params.markup,
		PrecioMinimoPieza:  params.minimo,
		Redondeo:           params.politica,
		IVA:                params.iva,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("producto_id", producto.ID.String()).
		Str("subtotal", res.Subtotal.String()).
		Str("margen_base", res.Margen.Base.String()).
		Str("margen_alcance", string(res.Margen.Origen.Alcance)).
		Str("ajuste", res.Margen.Ajuste.String()).
		Str("estrategia", string(params.estrategia)).
		Str("redondeo", string(params.politica.Estrategia)).
		Str("precio_final", res.PrecioFinal.String()).
		Msg("cotizacion: precio resuelto")

	c := &model.Cotizacion{
		ProductoID:         producto.ID,
		ClienteID:          clienteID,
		Cantidad:           req.Cantidad,
		Subtotal:           res.Subtotal,
		MargenAplicado:     res.Margen.Efectivo,
		MarkupAplicado:     res.MarkupAplicado,
		AjusteDinamico:     res.Margen.Ajuste,
		PrecioFinal:        res.PrecioFinal,
		TasaIVA:            res.IVA,
		MontoIVA:           res.MontoIVA,
		Total:              res.Total,
		EstrategiaPrecio:   string(params.estrategia),
		EstrategiaRedondeo: string(params.politica.Estrategia),
		PasoRedondeo:       params.politica.Paso,
		Items:              make([]model.CotizacionItem, len(res.Lineas)),
	}
	for i, l := range res.Lineas {
		c.Items[i] = model.CotizacionItem{
			Orden:         i + 1,
			TipoItem:      string(l.Tipo),
			Nombre:        l.Nombre,
			ItemID:        l.ItemID,
			Cantidad:      l.Cantidad,
			CostoUnitario: l.CostoUnitario,
			CostoTotal:    l.CostoTotal,
		}
	}

	ajustarEscalas(c, res.MinimoAplicado)

	snap := armarSnapshot(cfg, params, contexto, req, res, resueltas, c)
	return c, snap, nil
}

// ajustarEscalas rounds every figure to its column scale so Crear returns
// exactly what ObtenerPorID reads back. VAT and total are recomputed from the
// rounded price; a clamped price rounds up to stay at or above the minimum.
func ajustarEscalas(c *model.Cotizacion, minimoAplicado bool) {
	c.Cantidad = c.Cantidad.Round(model.EscalaCosto)
	c.Subtotal = c.Subtotal.Round(model.EscalaCosto)
	c.MargenAplicado = c.MargenAplicado.Round(model.EscalaFactor)
	c.MarkupAplicado = c.MarkupAplicado.Round(model.EscalaFactor)
	c.AjusteDinamico = c.AjusteDinamico.Round(model.EscalaFactor)
	c.TasaIVA = c.TasaIVA.Round(model.EscalaFactor)
	c.PasoRedondeo = c.PasoRedondeo.Round(model.EscalaFactor)

	if minimoAplicado {
		c.PrecioFinal = c.PrecioFinal.RoundCeil(model.EscalaMonto)
	} else {
		c.PrecioFinal = c.PrecioFinal.Round(model.EscalaMonto)
	}
	c.MontoIVA = c.PrecioFinal.Mul(c.TasaIVA).Round(model.EscalaMonto)
	c.Total = c.PrecioFinal.Add(c.MontoIVA)

	for i := range c.Items {
		it := &c.Items[i]
		it.Cantidad = it.Cantidad.Round(model.EscalaCosto)
		it.CostoUnitario = it.CostoUnitario.Round(model.EscalaCosto)
		it.CostoTotal = it.CostoTotal.Round(model.EscalaCosto)
	}
}

// validarSelecciones checks the chosen options against the product's groups
// and returns them in group order.
func validarSelecciones(p *model.Producto, opciones []dto.SeleccionRequest) ([]Seleccion, error) {
	grupos := make(map[string]int, len(p.GruposOpcion))
	for i := range p.GruposOpcion {
		grupos[p.GruposOpcion[i].Codigo] = i
	}

	fields := map[string]string{}
	porGrupo := make(map[string]map[uuid.UUID]bool)
	var out []Seleccion
	for i, o := range opciones {
		campo := "opciones[" + strconv.Itoa(i) + "]"
		idx, ok := grupos[o.Grupo]
		if !ok {
			fields[campo+".grupo"] = "grupo de opciones inexistente: " + o.Grupo
			continue
		}
		g := &p.GruposOpcion[idx]
		itemID, err := uuid.Parse(o.ItemID)
		if err != nil {
			fields[campo+".item_id"] = "uuid invalido"
			continue
		}
		if !g.Contiene(itemID) {
			fields[campo+".item_id"] = "el item no pertenece al grupo " + g.Codigo
			continue
		}
		elegidos := porGrupo[g.Codigo]
		if elegidos == nil {
			elegidos = map[uuid.UUID]bool{}
			porGrupo[g.Codigo] = elegidos
		}
		if elegidos[itemID] {
			fields[campo+".item_id"] = "item repetido"
			continue
		}
		elegidos[itemID] = true
		out = append(out, Seleccion{Grupo: g, ItemID: itemID})
	}

	for _, g := range p.GruposOpcion {
		n := len(porGrupo[g.Codigo])
		switch {
		case g.Requerido && n == 0:
			fields["opciones."+g.Codigo] = "seleccion requerida"
		case !g.Multiple && n > 1:
			fields["opciones."+g.Codigo] = "admite una sola seleccion"
		}
	}
	if len(fields) > 0 {
		return nil, &pricing.ValidationError{Fields: fields}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return grupos[out[i].Grupo.Codigo] < grupos[out[j].Grupo.Codigo]
	})
	return out, nil
}

func armarSnapshot(
	cfg *model.ConfiguracionGlobal,
	params parametros,
	contexto pricing.ContextoAlcance,
	req dto.CotizacionRequest,
	res pricing.Resultado,
	resueltas []LineaResuelta,
	c *model.Cotizacion,
) *dto.CotizacionSnapshot {
	snap := &dto.CotizacionSnapshot{
		Configuracion: dto.ConfiguracionSnapshot{
			MargenDefault:      cfg.MargenDefault,
			MarkupOperativo:    cfg.MarkupOperativo,
			FactorPerdida:      cfg.FactorPerdida,
			MinutosPreparacion: cfg.MinutosPreparacion,
			CostoHoraImpresion: cfg.CostoHoraImpresion,
			TasaIVA:            cfg.TasaIVA,
			EstrategiaPrecio:   cfg.EstrategiaPrecio,
			ModoReglaExclusiva: string(params.modo),
		},
		Origenes: params.origenes,
		Margen: dto.MargenSnapshot{
			Base:            res.Margen.Base.Round(model.EscalaFactor),
			Alcance:         string(res.Margen.Origen.Alcance),
			ReglaID:         uuidString(res.Margen.Origen.ReglaID),
			PorDefecto:      res.Margen.Origen.PorDefecto,
			Encontrado:      res.Margen.Encontrado,
			Ajuste:          c.AjusteDinamico,
			Efectivo:        c.MargenAplicado,
			ReglasAplicadas: uuidStrings(res.Margen.Aplicadas),
			Reemplazo:       res.Margen.Reemplazo,
		},
		Redondeo: dto.RedondeoSnapshot{
			Estrategia: string(params.politica.Estrategia),
			Paso:       c.PasoRedondeo,
			Puntos:     []string{},
		},
		Precio: dto.PrecioSnapshot{
			Estrategia:        string(params.estrategia),
			Markup:            c.MarkupAplicado,
			PrecioFormula:     res.PrecioFormula,
			PrecioMinimoPieza: params.minimo,
			MinimoAplicado:    res.MinimoAplicado,
		},
		Lineas:      make([]dto.LineaSnapshot, len(c.Items)),
		Selecciones: req.Opciones,
		Atributos:   req.Atributos,
		Contexto: dto.ContextoSnapshot{
			ProductoID:     contexto.ProductoID.String(),
			CategoriaID:    contexto.CategoriaID.String(),
			ClienteID:      uuidString(contexto.ClienteID),
			GrupoClienteID: uuidString(contexto.GrupoClienteID),
		},
	}
	if snap.Selecciones == nil {
		snap.Selecciones = []dto.SeleccionRequest{}
	}
	for _, p := range params.politica.ListaPuntos() {
		snap.Redondeo.Puntos = append(snap.Redondeo.Puntos, string(p))
	}
	for i, it := range c.Items {
		snap.Lineas[i] = dto.LineaSnapshot{
			LineaCotizacionResponse: itemToResponse(it),
			VersionID:               resueltas[i].VersionID.String(),
			Version:                 resueltas[i].Version,
			PrecioClienteID:         uuidString(resueltas[i].PrecioClienteID),
		}
	}
	return snap
}

// ── Mapping ─────────────────────────────────────────────────────────────────

func cotizacionToResponse(c *model.Cotizacion, snap *dto.CotizacionSnapshot) *dto.CotizacionResponse {
	resp := &dto.CotizacionResponse{
		Numero:             c.Numero,
		ProductoID:         c.ProductoID.String(),
		ClienteID:          uuidString(c.ClienteID),
		Cantidad:           c.Cantidad,
		Lineas:             make([]dto.LineaCotizacionResponse, 0, len(c.Items)),
		Subtotal:           c.Subtotal,
		MargenBase:         snap.Margen.Base,
		AjusteDinamico:     c.AjusteDinamico,
		MargenAplicado:     c.MargenAplicado,
		MarkupAplicado:     c.MarkupAplicado,
		EstrategiaPrecio:   c.EstrategiaPrecio,
		EstrategiaRedondeo: c.EstrategiaRedondeo,
		PasoRedondeo:       c.PasoRedondeo,
		MinimoAplicado:     snap.Precio.MinimoAplicado,
		PrecioFinal:        c.PrecioFinal,
		PrecioUnitario:     precioUnitario(c.PrecioFinal, c.Cantidad),
		TasaIVA:            c.TasaIVA,
		MontoIVA:           c.MontoIVA,
		Total:              c.Total,
		ReglasAplicadas:    snap.Margen.ReglasAplicadas,
	}
	if resp.ReglasAplicadas == nil {
		resp.ReglasAplicadas = []string{}
	}
	if c.ID != uuid.Nil {
		resp.ID = c.ID.String()
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	for _, it := range c.Items {
		resp.Lineas = append(resp.Lineas, itemToResponse(it))
	}
	return resp
}

func itemToResponse(it model.CotizacionItem) dto.LineaCotizacionResponse {
	return dto.LineaCotizacionResponse{
		Orden:         it.Orden,
		Tipo:          it.TipoItem,
		Nombre:        it.Nombre,
		ItemID:        it.ItemID.String(),
		Cantidad:      it.Cantidad,
		CostoUnitario: it.CostoUnitario,
		CostoTotal:    it.CostoTotal,
	}
}

// precioUnitario is informational only; the quote is priced as a whole.
func precioUnitario(final, cantidad decimal.Decimal) decimal.Decimal {
	if !cantidad.IsPositive() {
		return decimal.Zero
	}
	return final.DivRound(cantidad, 4)
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
