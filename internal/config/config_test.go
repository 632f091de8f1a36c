package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/turing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeFile(t, "turing.yaml", `
log:
  level: debug
engine:
  max_steps: 5000
analysis:
  samples: 3
  max_length: "20"
redis:
  addr: localhost:6379
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5000, cfg.Engine.MaxSteps)
	assert.Equal(t, 3, cfg.Analysis.Samples)
	assert.Equal(t, 20, cfg.Analysis.MaxLength)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	// Untouched keys keep their defaults.
	assert.Equal(t, "multiply", cfg.Analysis.Program)
	assert.Equal(t, 5, cfg.Analysis.Blanks)
	assert.Equal(t, "turing:run:", cfg.Redis.Prefix)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "turing.json", `{"server": {"port": "9090"}, "analysis": {"workers": 4}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Analysis.Workers)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Unknown Key", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "engine:\n  max_stepz: 3\n"))
		assert.Error(t, err)
	})

	t.Run("Bad YAML", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "engine: [\n"))
		assert.Error(t, err)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "analysis:\n  samples: 0\n"))
		assert.Error(t, err)
	})

	t.Run("Redis Without Address", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "store:\n  backend: redis\n"))
		assert.ErrorContains(t, err, "redis.addr")
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "store:\n  backend: s3\n"))
		assert.Error(t, err)
	})

	t.Run("Bad TTL", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "turing.yaml", "store:\n  ttl: soon\n"))
		assert.Error(t, err)
	})
}

func TestStoreConfig(t *testing.T) {
	path := writeFile(t, "turing.yaml", `
store:
  backend: redis
  ttl: 1h
redis:
  addr: localhost:6379
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreRedis, cfg.Store.Backend)

	ttl, err := cfg.StoreTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	def := config.Default()
	assert.Equal(t, config.StoreFile, def.Store.Backend)
	assert.Equal(t, filepath.Join(".turing", "runs"), def.Store.Dir)
}
