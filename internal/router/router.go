package router

import (
	"context"
	"time"

	"cotizador/internal/config"
	"cotizador/internal/handler"
	"cotizador/internal/middleware"
	"cotizador/internal/model"
	"cotizador/internal/repository"
	"cotizador/internal/service"
	"cotizador/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer built from one DB/Redis pair. cmd/server
// shares it between the HTTP handlers and the worker pool.
type Services struct {
	Catalogo    service.CatalogoService
	Cotizacion  service.CotizacionService
	Exportacion service.ExportacionService
}

// NewServices wires Service ← Repository ← DB/Redis. rdb may be nil: the
// catalog then runs uncached and issued quotes are not queued for export.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	catalogoRepos := service.CatalogoRepos{
		Materiales:         repository.NewVersionadoRepository[model.Material](db),
		Impresiones:        repository.NewVersionadoRepository[model.Impresion](db),
		Acabados:           repository.NewVersionadoRepository[model.Acabado](db),
		MaterialesCliente:  repository.NewPrecioClienteRepository[model.MaterialPrecioCliente](db),
		ImpresionesCliente: repository.NewPrecioClienteRepository[model.ImpresionPrecioCliente](db),
		AcabadosCliente:    repository.NewPrecioClienteRepository[model.AcabadoPrecioCliente](db),
	}
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	cotizacionRepo := repository.NewCotizacionRepository(db)
	configuracionRepo := repository.NewConfiguracionRepository(db)
	reglaMargenRepo := repository.NewReglaMargenRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	catalogoSvc := service.NewCatalogoService(catalogoRepos, rdb, cfg.CatalogoCacheTTL)
	costoSvc := service.NewCostoService(service.NewPrecioService(catalogoSvc), cfg.ResolucionConcurrente)
	cotizacionSvc := service.NewCotizacionService(
		productoRepo,
		clienteRepo,
		cotizacionRepo,
		service.NewConfiguracionService(configuracionRepo),
		costoSvc,
		service.NewMargenService(reglaMargenRepo),
		dispatcher,
	)
	exportacionSvc := service.NewExportacionService(cotizacionRepo, productoRepo, clienteRepo, rdb, cfg.ExportacionTTL)

	return &Services{
		Catalogo:    catalogoSvc,
		Cotizacion:  cotizacionSvc,
		Exportacion: exportacionSvc,
	}
}

// New returns a configured Gin engine over svcs. Background tasks owned by
// the engine stop when ctx is done.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	limiter.StartPurge(ctx, 5*time.Minute)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	cotizacionesH := handler.NewCotizacionesHandler(svcs.Cotizacion, svcs.Exportacion)
	catalogoH := handler.NewCatalogoHandler(svcs.Catalogo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer))
	{
		cot := v1.Group("/cotizaciones", middleware.RequireRole(middleware.RolVendedor, middleware.RolAdministrador))
		{
			cot.POST("", cotizacionesH.Crear)
			cot.POST("/calcular", cotizacionesH.Calcular)
			cot.GET("", cotizacionesH.Listar)
			cot.GET("/:id", cotizacionesH.ObtenerPorID)
			cot.GET("/:id/exportacion", cotizacionesH.Exportacion)
		}

		// Current versions are readable by sellers; history and writes are administrador only
		v1.GET("/catalogo/:tipo/:id", middleware.RequireRole(middleware.RolVendedor, middleware.RolAdministrador), catalogoH.Actual)
		cat := v1.Group("/catalogo/:tipo/:id/versiones", middleware.RequireRole(middleware.RolAdministrador))
		{
			cat.GET("", catalogoH.Historial)
			cat.POST("", catalogoH.NuevaVersion)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
