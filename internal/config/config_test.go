package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "data/submithub.db", cfg.SQLitePath)
	require.Equal(t, 168*time.Hour, cfg.TokenTTL)
	require.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUBMITHUB_ADDR", ":9999")
	t.Setenv("SUBMITHUB_JWT_SECRET", "prod-secret")
	t.Setenv("SUBMITHUB_TOKEN_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "prod-secret", cfg.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
