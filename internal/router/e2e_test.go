//go:build integration

package router_test

// End-to-end tests over real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cotizador/internal/config"
	"cotizador/internal/dto"
	"cotizador/internal/infra"
	"cotizador/internal/middleware"
	"cotizador/internal/migrations"
	"cotizador/internal/model"
	"cotizador/internal/pricing"
	"cotizador/internal/repository"
	"cotizador/internal/router"
	"cotizador/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func firmar(t *testing.T, rol string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: rol + "@e2e.test",
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server   *httptest.Server
	db       *gorm.DB
	rdb      *redis.Client
	svcs     *router.Services
	admin    string
	vendedor string

	papel     *model.Material
	impresion *model.Impresion
	corte     *model.Acabado
	producto  *model.Producto
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("cotizador_test"),
		tcPostgres.WithUsername("cotizador"),
		tcPostgres.WithPassword("cotizador"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                   "test",
		JWTSecret:             jwtSecret,
		DatabaseURL:           pgURL,
		RedisURL:              rdURL,
		WorkerPoolSize:        1,
		RateLimitRPM:          10_000,
		CORSOrigin:            "*",
		CatalogoCacheTTL:      time.Minute,
		ExportacionTTL:        time.Hour,
		ResolucionConcurrente: true,
	}

	// Connects and runs the goose migrations
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)

	env := &testEnv{db: db, rdb: rdb, admin: firmar(t, middleware.RolAdministrador), vendedor: firmar(t, middleware.RolVendedor)}
	env.seed(t)

	env.svcs = router.NewServices(cfg, db, rdb)
	worker.StartWorkerPool(ctx, rdb, worker.WorkerHandlers{
		Exportacion: worker.NewExportacionWorker(env.svcs.Exportacion),
	}, cfg.WorkerPoolSize)

	env.server = httptest.NewServer(router.New(ctx, cfg, db, rdb, env.svcs))
	t.Cleanup(env.server.Close)
	return env
}

// seed loads a flyer priced at 44 of cost for 100 units: 10 paper, 20 run,
// 10 setup and 4 cut.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repository.NewConfiguracionRepository(e.db).Save(ctx, &model.ConfiguracionGlobal{
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
	}))

	e.papel = &model.Material{Versionado: model.Versionado{Activo: true, CostoUnitario: d("0.10")}, Nombre: "couche 150g"}
	require.NoError(t, repository.NewVersionadoRepository[model.Material](e.db).Create(ctx, nil, e.papel))

	e.impresion = &model.Impresion{
		Versionado:  model.Versionado{Activo: true, CostoUnitario: d("0.80")},
		Nombre:      "digital 4/0",
		Caras:       1,
		Rendimiento: d("4"),
		CostoMinimo: d("5"),
	}
	require.NoError(t, repository.NewVersionadoRepository[model.Impresion](e.db).Create(ctx, nil, e.impresion))

	e.corte = &model.Acabado{
		Versionado:      model.Versionado{Activo: true, CostoUnitario: d("2")},
		Nombre:          "corte",
		TipoCalculo:     "PER_LOT",
		UnidadesPorLote: d("50"),
		UnidadesPorHora: d("200"),
	}
	require.NoError(t, repository.NewVersionadoRepository[model.Acabado](e.db).Create(ctx, nil, e.corte))

	categoria := &model.Categoria{Nombre: "volantes", Activo: true}
	require.NoError(t, e.db.Create(categoria).Error)

	impresionID := e.impresion.SerieID
	e.producto = &model.Producto{
		Nombre:      "volante A6",
		CategoriaID: categoria.ID,
		ImpresionID: &impresionID,
		AnchoMM:     d("100"),
		AltoMM:      d("50"),
		Activo:      true,
		Materiales: []model.ProductoMaterial{
			{MaterialID: e.papel.SerieID, CantidadPorUnidad: d("1"), FactorDesperdicio: d("0"), Orden: 1},
		},
		Acabados: []model.ProductoAcabado{{AcabadoID: e.corte.SerieID, Orden: 1}},
	}
	require.NoError(t, e.db.Omit("Categoria").Create(e.producto).Error)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_SchemaAtLatestVersion(t *testing.T) {
	env := setupTestEnv(t)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)

	version, err := migrations.Version(sqlDB)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// already applied; a second run is a no-op
	require.NoError(t, infra.RunMigrations(env.db))
}

func TestE2E_QuoteLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	pedido := map[string]any{"producto_id": env.producto.ID.String(), "cantidad": "100"}

	resp := do(t, env.server, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var salud map[string]any
	decodeJSON(t, resp, &salud)
	assert.Equal(t, "connected", salud["redis"])

	// 1. Preview is not persisted
	resp = do(t, env.server, http.MethodPost, "/v1/cotizaciones/calcular", pedido, env.vendedor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview dto.CotizacionResponse
	decodeJSON(t, resp, &preview)
	assert.True(t, preview.Subtotal.Equal(d("44")), "subtotal %s", preview.Subtotal)
	assert.True(t, preview.PrecioFinal.Equal(d("57.20")))
	assert.Empty(t, preview.ID)

	// 2. Issue the quote
	resp = do(t, env.server, http.MethodPost, "/v1/cotizaciones", pedido, env.vendedor)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var emitida dto.CotizacionResponse
	decodeJSON(t, resp, &emitida)
	require.NotEmpty(t, emitida.ID)
	assert.Equal(t, int64(1), emitida.Numero)
	assert.True(t, emitida.Total.Equal(d("69.21")))

	// 3. Sellers cannot touch the catalog
	path := "/v1/catalogo/material/" + env.papel.SerieID.String() + "/versiones"
	resp = do(t, env.server, http.MethodPost, path, map[string]any{"costo_unitario": "0.50"}, env.vendedor)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 4. Re-price the paper
	resp = do(t, env.server, http.MethodPost, path, map[string]any{"costo_unitario": "0.50", "version_esperada": 1}, env.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var version dto.VersionResponse
	decodeJSON(t, resp, &version)
	assert.Equal(t, 2, version.Version)

	// 5. The issued quote keeps its figures, new quotes see the new cost
	resp = do(t, env.server, http.MethodGet, "/v1/cotizaciones/"+emitida.ID, nil, env.vendedor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var guardada dto.CotizacionResponse
	decodeJSON(t, resp, &guardada)
	assert.True(t, guardada.PrecioFinal.Equal(emitida.PrecioFinal))
	require.Len(t, guardada.Lineas, len(emitida.Lineas))
	for i, l := range emitida.Lineas {
		assert.True(t, l.CostoTotal.Equal(guardada.Lineas[i].CostoTotal), "linea %d", i)
	}

	resp = do(t, env.server, http.MethodPost, "/v1/cotizaciones/calcular", pedido, env.vendedor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &preview)
	assert.True(t, preview.Subtotal.Equal(d("84")), "subtotal %s", preview.Subtotal)

	// 6. The worker warms the export cache after issuing
	key := "exportacion:cotizacion:" + emitida.ID
	require.Eventually(t, func() bool {
		n, err := env.rdb.Exists(context.Background(), key).Result()
		return err == nil && n == 1
	}, 15*time.Second, 200*time.Millisecond)

	resp = do(t, env.server, http.MethodGet, "/v1/cotizaciones/"+emitida.ID+"/exportacion", nil, env.vendedor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var exp dto.CotizacionExport
	decodeJSON(t, resp, &exp)
	assert.Equal(t, "volante A6", exp.ProductoNombre)
	assert.True(t, exp.Total.Equal(emitida.Total))
}

func TestE2E_DeactivatedItemHaltsPricing(t *testing.T) {
	env := setupTestEnv(t)
	no := false
	_, err := env.svcs.Catalogo.NuevaVersion(context.Background(), model.TipoAcabado, env.corte.SerieID, dto.NuevaVersionRequest{Activo: &no})
	require.NoError(t, err)

	resp := do(t, env.server, http.MethodPost, "/v1/cotizaciones", map[string]any{
		"producto_id": env.producto.ID.String(),
		"cantidad":    "100",
	}, env.vendedor)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "UNAVAILABLE_ITEM", body["code"])

	var n int64
	require.NoError(t, env.db.Model(&model.Cotizacion{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestE2E_ConcurrentVersioning(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	serie := env.papel.SerieID
	const escritores = 16

	// Unconditional writers all land, one version each
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < escritores; i++ {
		costo := decimal.NewFromInt(int64(i + 1))
		g.Go(func() error {
			_, err := env.svcs.Catalogo.NuevaVersion(gctx, model.TipoMaterial, serie, dto.NuevaVersionRequest{CostoUnitario: &costo})
			return err
		})
	}
	require.NoError(t, g.Wait())

	hist, err := env.svcs.Catalogo.Historial(ctx, model.TipoMaterial, serie)
	require.NoError(t, err)
	require.Len(t, hist.Data, escritores+1)
	actuales := 0
	for i, v := range hist.Data {
		assert.Equal(t, escritores+1-i, v.Version)
		if v.EsActual {
			actuales++
		}
	}
	assert.Equal(t, 1, actuales)

	// Writers expecting the same version: exactly one wins
	esperada := escritores + 1
	var g2 errgroup.Group
	resultados := make([]error, escritores)
	for i := 0; i < escritores; i++ {
		g2.Go(func() error {
			costo := d("0.99")
			_, resultados[i] = env.svcs.Catalogo.NuevaVersion(ctx, model.TipoMaterial, serie, dto.NuevaVersionRequest{
				CostoUnitario:   &costo,
				VersionEsperada: &esperada,
			})
			return nil
		})
	}
	require.NoError(t, g2.Wait())

	ganadores := 0
	for _, err := range resultados {
		if err == nil {
			ganadores++
			continue
		}
		assert.True(t, errors.Is(err, pricing.ErrVersionConflict), "unexpected error %v", err)
	}
	assert.Equal(t, 1, ganadores)

	actual, err := env.svcs.Catalogo.ObtenerActual(ctx, model.TipoMaterial, serie)
	require.NoError(t, err)
	assert.Equal(t, escritores+2, actual.Version)
	assert.True(t, actual.CostoUnitario.Equal(d("0.99")))
}
