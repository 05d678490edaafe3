package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "cafe_db", cfg.DB.Name)
	assert.Equal(t, 10, cfg.DB.MaxIdleConns)
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "cafe", cfg.Metrics.Prefix)
	assert.Empty(t, cfg.Seed.URL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_NAME", "cafes_prod")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("SEED_URL", "https://example.com/cafes.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "cafes_prod", cfg.DB.Name)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "https://example.com/cafes.json", cfg.Seed.URL)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		Name:     "cafe_db",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=cafe_db sslmode=disable",
		db.GetDSN())
}
