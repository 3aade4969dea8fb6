package service

import (
	"context"

	"cotizador/internal/model"
	"cotizador/internal/pricing"
	"cotizador/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReglasAplicables are the active rules that target a quote's context.
type ReglasAplicables struct {
	Fijas     []pricing.ReglaFija
	Dinamicas []pricing.ReglaDinamica
}

// MargenService loads margin rules for the engine. The resolution itself is
// pricing.ResolverMargen, which never touches storage.
type MargenService interface {
	Cargar(ctx context.Context, c pricing.ContextoAlcance) (*ReglasAplicables, error)
}

type margenService struct {
	repo repository.ReglaMargenRepository
}

func NewMargenService(repo repository.ReglaMargenRepository) MargenService {
	return &margenService{repo: repo}
}

func objetivosDe(c pricing.ContextoAlcance) []uuid.UUID {
	out := []uuid.UUID{c.ProductoID, c.CategoriaID}
	if c.ClienteID != nil {
		out = append(out, *c.ClienteID)
	}
	if c.GrupoClienteID != nil {
		out = append(out, *c.GrupoClienteID)
	}
	return out
}

func (s *margenService) Cargar(ctx context.Context, c pricing.ContextoAlcance) (*ReglasAplicables, error) {
	objetivos := objetivosDe(c)

	fijas, err := s.repo.ListFijasActivas(ctx, objetivos)
	if err != nil {
		return nil, err
	}
	dinamicas, err := s.repo.ListDinamicasActivas(ctx, objetivos)
	if err != nil {
		return nil, err
	}

	out := &ReglasAplicables{
		Fijas:     make([]pricing.ReglaFija, 0, len(fijas)),
		Dinamicas: make([]pricing.ReglaDinamica, 0, len(dinamicas)),
	}
	vistos := make(map[string]int, len(fijas))
	for _, r := range fijas {
		if !alcanceConocido(r.ID, r.Alcance) {
			continue
		}
		out.Fijas = append(out.Fijas, reglaFijaDe(r))
		vistos[claveObjetivo(r.Alcance, r.ObjetivoID)]++
	}
	for clave, n := range vistos {
		if n > 1 {
			log.Warn().Str("objetivo", clave).Int("reglas", n).
				Msg("margen: varias reglas fijas activas para el mismo objetivo; gana la mas reciente")
		}
	}
	for _, r := range dinamicas {
		if !alcanceConocido(r.ID, r.Alcance) {
			continue
		}
		out.Dinamicas = append(out.Dinamicas, reglaDinamicaDe(r))
	}
	return out, nil
}

// alcanceConocido skips rules whose scope the engine cannot match; they would
// otherwise sit in the list and never apply.
func alcanceConocido(id uuid.UUID, alcance string) bool {
	if pricing.Alcance(alcance).Valido() {
		return true
	}
	log.Warn().Str("regla_id", id.String()).Str("alcance", alcance).
		Msg("margen: regla con alcance desconocido, se ignora")
	return false
}

func claveObjetivo(alcance string, objetivo *uuid.UUID) string {
	if objetivo == nil {
		return alcance
	}
	return alcance + ":" + objetivo.String()
}

func reglaFijaDe(r model.ReglaMargen) pricing.ReglaFija {
	return pricing.ReglaFija{
		ID:         r.ID,
		Alcance:    pricing.Alcance(r.Alcance),
		ObjetivoID: r.ObjetivoID,
		Margen:     r.Margen,
		CreadaEn:   r.CreatedAt,
	}
}

func reglaDinamicaDe(r model.ReglaMargenDinamica) pricing.ReglaDinamica {
	return pricing.ReglaDinamica{
		ID:             r.ID,
		Nombre:         r.Nombre,
		Alcance:        pricing.Alcance(r.Alcance),
		ObjetivoID:     r.ObjetivoID,
		CantidadMinima: r.CantidadMinima,
		SubtotalMinimo: r.SubtotalMinimo,
		Ajuste:         r.Ajuste,
		Prioridad:      r.Prioridad,
		Acumulable:     r.Acumulable,
	}
}
