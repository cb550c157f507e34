package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/shop")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWebPort, cfg.Web.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Web.Addr())
	assert.Equal(t, "shop", cfg.Database.DatabaseName())
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "@every 30s", cfg.Jobs.StatsInterval)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DB", "catalog")
	t.Setenv("PRODUCTAPI_DB_SEED_DEMO", "true")
	t.Setenv("PRODUCTAPI_DB_CONNECT_TIMEOUT", "3s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Web.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, "catalog", cfg.Database.DatabaseName())
	assert.True(t, cfg.Database.SeedDemo)
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB", "")

	cfile := filepath.Join(t.TempDir(), "productapi.yml")
	content := `
web:
  port: 7000
database:
  uri: mongodb://files:27017/products
  connect_timeout: 5s
logger:
  mode: production
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o600))

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Web.Port)
	assert.Equal(t, "products", cfg.Database.DatabaseName())
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "production", cfg.Logger.Mode)

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("PORT", "7100")
		cfg, err := LoadConfig(cfile)
		require.NoError(t, err)
		assert.Equal(t, 7100, cfg.Web.Port)
	})
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing connection string", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Database.URI")
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("PORT", "not-a-port")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Web.Port")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
		require.Error(t, err)
	})
}

func TestDatabaseNameFallback(t *testing.T) {
	assert.Equal(t, DefaultDatabaseName, DBConfig{URI: "mongodb://localhost:27017"}.DatabaseName())
	assert.Equal(t, DefaultDatabaseName, DBConfig{URI: "::not a uri::"}.DatabaseName())
}
