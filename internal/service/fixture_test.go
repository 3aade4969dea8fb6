package service_test

import (
	"context"

	"cotizador/internal/model"
	"cotizador/internal/service"

	"github.com/google/uuid"
)

// escenario is a small print shop: flyers with a paper stock, a default
// single-sided print that can be switched to double-sided, an optional vinyl
// backing and a cut finish priced per lot of 50.
type escenario struct {
	cat *catalogoStub

	couche, vinilo *model.Material
	simple, doble  *model.Impresion
	corte          *model.Acabado

	categoria *model.Categoria
	producto  *model.Producto
	cliente   *model.Cliente
	grupo     uuid.UUID

	productos    *stubProductoRepo
	clientes     *stubClienteRepo
	config       *stubConfiguracionRepo
	reglas       *stubReglaMargenRepo
	cotizaciones *stubCotizacionRepo
}

func configuracionBase() *model.ConfiguracionGlobal {
	return &model.ConfiguracionGlobal{
		ID:                 model.ConfiguracionGlobalID,
		MargenDefault:      d("0.30"),
		MarkupOperativo:    d("0.10"),
		PasoRedondeo:       d("0.05"),
		EstrategiaRedondeo: "END_ONLY",
		FactorPerdida:      d("0"),
		MinutosPreparacion: d("15"),
		CostoHoraImpresion: d("40"),
		TasaIVA:            d("0.21"),
		EstrategiaPrecio:   "COST_MARGIN_ONLY",
		ModoReglaExclusiva: "ADITIVO",
	}
}

func nuevoEscenario() *escenario {
	e := &escenario{cat: newCatalogoStub()}
	e.couche = e.cat.material("couche 150g", "0.10")
	e.vinilo = e.cat.material("vinilo", "0.50")
	e.simple = e.cat.impresion("digital 4/0", "0.80", 1)
	e.doble = e.cat.impresion("digital 4/4", "1.20", 2)
	e.corte = e.cat.acabado("corte", "2", "PER_LOT")

	e.categoria = &model.Categoria{ID: uuid.New(), Nombre: "volantes", Activo: true}
	impresionID := e.simple.SerieID
	e.producto = &model.Producto{
		ID:          uuid.New(),
		Nombre:      "volante A6",
		CategoriaID: e.categoria.ID,
		ImpresionID: &impresionID,
		AnchoMM:     d("100"),
		AltoMM:      d("50"),
		Activo:      true,
		Categoria:   *e.categoria,
		Materiales: []model.ProductoMaterial{
			{ID: uuid.New(), MaterialID: e.couche.SerieID, CantidadPorUnidad: d("1"), FactorDesperdicio: d("0"), Orden: 1},
		},
		Acabados: []model.ProductoAcabado{
			{ID: uuid.New(), AcabadoID: e.corte.SerieID, Orden: 1},
		},
		GruposOpcion: []model.GrupoOpcion{
			{
				ID:     uuid.New(),
				Codigo: "impresion",
				Tipo:   model.GrupoImpresion,
				Orden:  1,
				Items: []model.GrupoOpcionItem{
					{ItemID: e.simple.SerieID},
					{ItemID: e.doble.SerieID},
				},
			},
			{
				ID:                uuid.New(),
				Codigo:            "soporte",
				Tipo:              model.GrupoMaterial,
				CantidadPorUnidad: d("0.5"),
				FactorDesperdicio: d("0"),
				Orden:             2,
				Items:             []model.GrupoOpcionItem{{ItemID: e.vinilo.SerieID}},
			},
		},
	}
	e.productos = newStubProductoRepo()
	_ = e.productos.Create(context.Background(), e.producto)

	e.grupo = uuid.New()
	grupo := e.grupo
	e.cliente = &model.Cliente{ID: uuid.New(), Nombre: "Imprenta Sur", GrupoClienteID: &grupo, Activo: true}
	e.clientes = &stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{e.cliente.ID: e.cliente}}

	e.config = &stubConfiguracionRepo{cfg: configuracionBase()}
	e.reglas = &stubReglaMargenRepo{}
	e.cotizaciones = newStubCotizacionRepo()
	return e
}

func (e *escenario) precios() service.PrecioService {
	return service.NewPrecioService(e.cat.svc)
}

func (e *escenario) servicio(concurrente bool) service.CotizacionService {
	return service.NewCotizacionService(
		e.productos,
		e.clientes,
		e.cotizaciones,
		service.NewConfiguracionService(e.config),
		service.NewCostoService(e.precios(), concurrente),
		service.NewMargenService(e.reglas),
		nil,
	)
}
