// cmd/seed/main.go: creates/refreshes the global configuration row and the
// baseline margin rules.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"cotizador/internal/config"
	"cotizador/internal/infra"
	"cotizador/internal/model"
	"cotizador/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	// An existing row is left as is: it is edited by the shop, not by seeds.
	configuracion := repository.NewConfiguracionRepository(db)
	if _, err := configuracion.Get(ctx); errors.Is(err, gorm.ErrRecordNotFound) {
		err = configuracion.Save(ctx, &model.ConfiguracionGlobal{
			MargenDefault:      dec("0.35"),
			MarkupOperativo:    dec("0.10"),
			PasoRedondeo:       dec("10"),
			EstrategiaRedondeo: "END_ONLY",
			PuntosRedondeo:     "",
			FactorPerdida:      dec("0.03"),
			MinutosPreparacion: dec("15"),
			CostoHoraImpresion: dec("4500"),
			TasaIVA:            dec("0.21"),
			EstrategiaPrecio:   "COST_MARGIN_ONLY",
			ModoReglaExclusiva: "ADITIVO",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configuracion_global")
		}
		log.Info().Msg("configuracion_global creada")
	} else if err != nil {
		log.Fatal().Err(err).Msg("configuracion_global")
	}

	global := model.ReglaMargen{Alcance: "GLOBAL", Margen: dec("0.35"), Activo: true}
	if err := db.WithContext(ctx).
		Where("alcance = ? AND objetivo_id IS NULL", "GLOBAL").
		FirstOrCreate(&global).Error; err != nil {
		log.Fatal().Err(err).Msg("regla GLOBAL")
	}

	// Quantity tiers: the larger one wins and stops evaluation.
	tramos := []model.ReglaMargenDinamica{
		{Nombre: "cantidad >= 1000", CantidadMinima: ptr(dec("1000")), Ajuste: dec("-0.08"), Prioridad: 10},
		{Nombre: "cantidad >= 500", CantidadMinima: ptr(dec("500")), Ajuste: dec("-0.05"), Prioridad: 20},
		{Nombre: "cantidad >= 100", CantidadMinima: ptr(dec("100")), Ajuste: dec("-0.02"), Prioridad: 30},
	}
	for _, t := range tramos {
		t.Alcance = "GLOBAL"
		t.Activo = true
		if err := db.WithContext(ctx).Where("nombre = ?", t.Nombre).FirstOrCreate(&t).Error; err != nil {
			log.Fatal().Err(err).Str("regla", t.Nombre).Msg("regla dinamica")
		}
	}

	log.Info().Int("tramos", len(tramos)).Msg("reglas de margen sembradas")
}

func ptr[T any](v T) *T { return &v }
