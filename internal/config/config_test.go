package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SECRET_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3333, cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, devSecretKey, cfg.Auth.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SECRET_KEY", "too-short")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "mariadb", User: "gobarber", Password: "p@ss:word", Name: "gobarber"}
	dsn := d.DSN()
	assert.Contains(t, dsn, "tcp(mariadb:3306)")
	assert.Contains(t, dsn, "parseTime=true")

	d.URL = "root:root@tcp(db:3307)/other"
	assert.Equal(t, "root:root@tcp(db:3307)/other", d.DSN())
}

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("GOBARBER_STORAGE", "")
	t.Setenv("GOBARBER_STATE_FILE", filepath.Join(t.TempDir(), "state.json"))

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, "@Gobarber", cfg.Namespace)
	assert.Equal(t, "http://localhost:3333", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadClient_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("GOBARBER_STORAGE", "indexeddb")

	_, err := LoadClient()
	require.Error(t, err)
}
