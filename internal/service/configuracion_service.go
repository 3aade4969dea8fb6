package service

import (
	"context"
	"strconv"

	"cotizador/internal/model"
	"cotizador/internal/repository"
)

// ConfiguracionService reads the global configuration row. The engine never
// writes it and never falls back to built-in defaults when it is missing.
type ConfiguracionService interface {
	Obtener(ctx context.Context) (*model.ConfiguracionGlobal, error)
}

type configuracionService struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionService(repo repository.ConfiguracionRepository) ConfiguracionService {
	return &configuracionService{repo: repo}
}

func (s *configuracionService) Obtener(ctx context.Context) (*model.ConfiguracionGlobal, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, noEncontrado(err, "configuracion global", strconv.Itoa(model.ConfiguracionGlobalID))
	}
	return c, nil
}
