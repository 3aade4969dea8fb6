package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"cotizador/internal/dto"
	"cotizador/internal/model"
	"cotizador/internal/repository"
	"cotizador/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// ── Versioned stores ─────────────────────────────────────────────────────────

// stubVersionado is an in-memory VersionadoRepository.
type stubVersionado[M any, PM interface {
	*M
	model.ItemVersionado
}] struct {
	mu    sync.Mutex
	filas map[uuid.UUID][]PM
}

func newStubVersionado[M any, PM interface {
	*M
	model.ItemVersionado
}]() *stubVersionado[M, PM] {
	return &stubVersionado[M, PM]{filas: make(map[uuid.UUID][]PM)}
}

func (r *stubVersionado[M, PM]) Actual(_ context.Context, serieID uuid.UUID) (PM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.filas[serieID] {
		if f.Cabecera().EsActual {
			copia := *f
			return PM(&copia), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVersionado[M, PM]) Historial(_ context.Context, serieID uuid.UUID) ([]PM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filas := r.filas[serieID]
	out := make([]PM, 0, len(filas))
	for i := len(filas) - 1; i >= 0; i-- {
		out = append(out, filas[i])
	}
	return out, nil
}

func (r *stubVersionado[M, PM]) Create(_ context.Context, _ *gorm.DB, item PM) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := item.Cabecera()
	if h.SerieID == uuid.Nil {
		h.SerieID = uuid.New()
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	h.Version = 1
	h.EsActual = true
	r.filas[h.SerieID] = append(r.filas[h.SerieID], item)
	return nil
}

func (r *stubVersionado[M, PM]) NuevaVersion(_ context.Context, serieID uuid.UUID, p model.Parche, esperada *int) (PM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.filas[serieID] {
		cab := f.Cabecera()
		if !cab.EsActual {
			continue
		}
		if esperada != nil && *esperada != cab.Version {
			return nil, repository.ErrVersionConflict
		}
		copia := *f
		nueva := PM(&copia)
		nueva.Aplicar(p)
		h := nueva.Cabecera()
		h.ID = uuid.New()
		h.Version = cab.Version + 1
		h.CreatedAt = time.Now()
		cab.EsActual = false
		r.filas[serieID] = append(r.filas[serieID], nueva)
		return nueva, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVersionado[M, PM]) DB() *gorm.DB { return nil }

type stubPrecioCliente[M any, PM interface {
	*M
	model.ItemPrecioCliente
}] struct {
	*stubVersionado[M, PM]
}

func newStubPrecioCliente[M any, PM interface {
	*M
	model.ItemPrecioCliente
}]() *stubPrecioCliente[M, PM] {
	return &stubPrecioCliente[M, PM]{stubVersionado: newStubVersionado[M, PM]()}
}

func (r *stubPrecioCliente[M, PM]) ListarActuales(_ context.Context, clienteID, itemID uuid.UUID) ([]PM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PM
	for _, filas := range r.filas {
		for _, f := range filas {
			b := f.Base()
			if b.EsActual && b.Activo && b.ClienteID == clienteID && b.ItemID == itemID {
				out = append(out, f)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Base(), out[j].Base()
		if a.Prioridad != b.Prioridad {
			return a.Prioridad < b.Prioridad
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

var (
	_ repository.VersionadoRepository[*model.Material]                  = (*stubVersionado[model.Material, *model.Material])(nil)
	_ repository.PrecioClienteRepository[*model.ImpresionPrecioCliente] = (*stubPrecioCliente[model.ImpresionPrecioCliente, *model.ImpresionPrecioCliente])(nil)
)

// catalogoStub bundles the six stores behind one CatalogoService.
type catalogoStub struct {
	materiales         *stubVersionado[model.Material, *model.Material]
	impresiones        *stubVersionado[model.Impresion, *model.Impresion]
	acabados           *stubVersionado[model.Acabado, *model.Acabado]
	materialesCliente  *stubPrecioCliente[model.MaterialPrecioCliente, *model.MaterialPrecioCliente]
	impresionesCliente *stubPrecioCliente[model.ImpresionPrecioCliente, *model.ImpresionPrecioCliente]
	acabadosCliente    *stubPrecioCliente[model.AcabadoPrecioCliente, *model.AcabadoPrecioCliente]
	svc                service.CatalogoService
}

func newCatalogoStub() *catalogoStub {
	c := &catalogoStub{
		materiales:         newStubVersionado[model.Material, *model.Material](),
		impresiones:        newStubVersionado[model.Impresion, *model.Impresion](),
		acabados:           newStubVersionado[model.Acabado, *model.Acabado](),
		materialesCliente:  newStubPrecioCliente[model.MaterialPrecioCliente, *model.MaterialPrecioCliente](),
		impresionesCliente: newStubPrecioCliente[model.ImpresionPrecioCliente, *model.ImpresionPrecioCliente](),
		acabadosCliente:    newStubPrecioCliente[model.AcabadoPrecioCliente, *model.AcabadoPrecioCliente](),
	}
	c.svc = service.NewCatalogoService(service.CatalogoRepos{
		Materiales:         c.materiales,
		Impresiones:        c.impresiones,
		Acabados:           c.acabados,
		MaterialesCliente:  c.materialesCliente,
		ImpresionesCliente: c.impresionesCliente,
		AcabadosCliente:    c.acabadosCliente,
	}, nil, time.Minute)
	return c
}

func (c *catalogoStub) material(nombre, costo string) *model.Material {
	m := &model.Material{Versionado: model.Versionado{Activo: true, CostoUnitario: d(costo)}, Nombre: nombre}
	_ = c.materiales.Create(context.Background(), nil, m)
	return m
}

func (c *catalogoStub) impresion(nombre, costo string, caras int) *model.Impresion {
	i := &model.Impresion{
		Versionado:  model.Versionado{Activo: true, CostoUnitario: d(costo)},
		Nombre:      nombre,
		Caras:       caras,
		Rendimiento: d("4"),
		CostoMinimo: d("5"),
	}
	_ = c.impresiones.Create(context.Background(), nil, i)
	return i
}

func (c *catalogoStub) acabado(nombre, costo, tipo string) *model.Acabado {
	a := &model.Acabado{
		Versionado:      model.Versionado{Activo: true, CostoUnitario: d(costo)},
		Nombre:          nombre,
		TipoCalculo:     tipo,
		UnidadesPorLote: d("50"),
		UnidadesPorHora: d("200"),
	}
	_ = c.acabados.Create(context.Background(), nil, a)
	return a
}

func (c *catalogoStub) precioImpresion(cliente, item uuid.UUID, costo string, prioridad int, creado time.Time, attrs map[string]any) *model.ImpresionPrecioCliente {
	pc := &model.ImpresionPrecioCliente{PrecioCliente: model.PrecioCliente{
		Versionado: model.Versionado{Activo: true, CostoUnitario: d(costo), CreatedAt: creado},
		ClienteID:  cliente,
		ItemID:     item,
		Prioridad:  prioridad,
		Atributos:  attrs,
	}}
	_ = c.impresionesCliente.Create(context.Background(), nil, pc)
	return pc
}

func (c *catalogoStub) desactivar(t model.TipoCatalogo, serie uuid.UUID) {
	no := false
	_, err := c.svc.NuevaVersion(context.Background(), t, serie, dto.NuevaVersionRequest{Activo: &no})
	if err != nil {
		panic(err)
	}
}

// ── Entity stores ────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubConfiguracionRepo struct {
	cfg *model.ConfiguracionGlobal
}

func (r *stubConfiguracionRepo) Get(_ context.Context) (*model.ConfiguracionGlobal, error) {
	if r.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *r.cfg
	return &c, nil
}

func (r *stubConfiguracionRepo) Save(_ context.Context, c *model.ConfiguracionGlobal) error {
	r.cfg = c
	return nil
}

var _ repository.ConfiguracionRepository = (*stubConfiguracionRepo)(nil)

type stubReglaMargenRepo struct {
	fijas     []model.ReglaMargen
	dinamicas []model.ReglaMargenDinamica
}

func apunta(alcance string, objetivo *uuid.UUID, objetivos []uuid.UUID) bool {
	if alcance == "GLOBAL" {
		return true
	}
	if objetivo == nil {
		return false
	}
	for _, o := range objetivos {
		if o == *objetivo {
			return true
		}
	}
	return false
}

func (r *stubReglaMargenRepo) ListFijasActivas(_ context.Context, objetivos []uuid.UUID) ([]model.ReglaMargen, error) {
	var out []model.ReglaMargen
	for _, f := range r.fijas {
		if f.Activo && apunta(f.Alcance, f.ObjetivoID, objetivos) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *stubReglaMargenRepo) ListDinamicasActivas(_ context.Context, objetivos []uuid.UUID) ([]model.ReglaMargenDinamica, error) {
	var out []model.ReglaMargenDinamica
	for _, f := range r.dinamicas {
		if f.Activo && apunta(f.Alcance, f.ObjetivoID, objetivos) {
			out = append(out, f)
		}
	}
	return out, nil
}

var _ repository.ReglaMargenRepository = (*stubReglaMargenRepo)(nil)

type stubCotizacionRepo struct {
	cotizaciones map[uuid.UUID]*model.Cotizacion
	seq          int64
}

func newStubCotizacionRepo() *stubCotizacionRepo {
	return &stubCotizacionRepo{cotizaciones: make(map[uuid.UUID]*model.Cotizacion)}
}

// Create keeps a copy rounded to the column scales, as Postgres would.
func (r *stubCotizacionRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cotizacion) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()

	fila := *c
	fila.Cantidad = c.Cantidad.Round(4)
	fila.Subtotal = c.Subtotal.Round(4)
	fila.MargenAplicado = c.MargenAplicado.Round(4)
	fila.MarkupAplicado = c.MarkupAplicado.Round(4)
	fila.AjusteDinamico = c.AjusteDinamico.Round(4)
	fila.PrecioFinal = c.PrecioFinal.Round(2)
	fila.TasaIVA = c.TasaIVA.Round(4)
	fila.MontoIVA = c.MontoIVA.Round(2)
	fila.Total = c.Total.Round(2)
	fila.PasoRedondeo = c.PasoRedondeo.Round(4)
	fila.Items = make([]model.CotizacionItem, len(c.Items))
	for i, it := range c.Items {
		it.Cantidad = it.Cantidad.Round(4)
		it.CostoUnitario = it.CostoUnitario.Round(4)
		it.CostoTotal = it.CostoTotal.Round(4)
		fila.Items[i] = it
	}
	r.cotizaciones[c.ID] = &fila
	return nil
}

func (r *stubCotizacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cotizacion, error) {
	c, ok := r.cotizaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCotizacionRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubCotizacionRepo) List(_ context.Context, f dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var out []model.Cotizacion
	for _, c := range r.cotizaciones {
		if f.ProductoID != "" && c.ProductoID.String() != f.ProductoID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero > out[j].Numero })
	return out, int64(len(out)), nil
}

func (r *stubCotizacionRepo) DB() *gorm.DB { return nil }

var _ repository.CotizacionRepository = (*stubCotizacionRepo)(nil)
