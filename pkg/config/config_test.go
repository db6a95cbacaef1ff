package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.False(t, cfg.Procurement.AllowOverReceipt)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_LOCK_TIMEOUT", "1500")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("PROCUREMENT_ALLOW_OVER_RECEIPT", "true")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, int32(7), cfg.DB.MaxConns)
	assert.True(t, cfg.Procurement.AllowOverReceipt)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ProductionSinSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "erp", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/erp?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
