package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ISSUER", "sso")
	t.Setenv("CATALOGO_CACHE_TTL", "30s")
	t.Setenv("WORKER_POOL_SIZE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "sso", cfg.JWTIssuer)
	assert.Equal(t, 30*time.Second, cfg.CatalogoCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.ExportacionTTL)
	assert.Equal(t, 1, cfg.WorkerPoolSize)
	assert.True(t, cfg.ResolucionConcurrente)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}
