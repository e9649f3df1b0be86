package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-search-cache/cache"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "movies", cfg.Cache.Prefix)
	assert.Equal(t, cache.CodecMsgpack, cfg.Cache.Codec)
	assert.Equal(t, cache.DefaultWindow, cfg.Cache.Window)
	assert.Equal(t, DefaultFilmsWindow, cfg.Windows.Films)
	assert.Equal(t, DefaultGenresWindow, cfg.Windows.Genres)
	assert.Equal(t, DefaultPersonsWindow, cfg.Windows.Persons)
	assert.Equal(t, 10000, cfg.Memory.Capacity)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ES_ADDRESSES", "http://es1:9200,http://es2:9200")
	t.Setenv("REDIS_ADDRESS", "redis:6380")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("FILMS_CACHE_EXPIRE", "90s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "redis:6380", cfg.Redis.Address)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 90*time.Second, cfg.Windows.Films)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
backend: memory
cache:
  prefix: test
  codec: json
windows:
  genres: 1h
memory:
  capacity: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "test", cfg.Cache.Prefix)
	assert.Equal(t, cache.CodecJSON, cfg.Cache.Codec)
	assert.Equal(t, time.Hour, cfg.Windows.Genres)
	assert.Equal(t, DefaultFilmsWindow, cfg.Windows.Films)
	assert.Equal(t, 50, cfg.Memory.Capacity)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("redis:\n  address: file:6379\n"), 0o600))
	t.Setenv("REDIS_ADDRESS", "env:6379")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.Redis.Address)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"CACHE_BACKEND": "memcached"}},
		{name: "unknown codec", env: map[string]string{"CACHE_CODEC": "gob"}},
		{name: "negative redis db", env: map[string]string{"REDIS_DB": "-1"}},
		{name: "bad elasticsearch address", env: map[string]string{"ES_ADDRESSES": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unterminated"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestConfig_ValidateOnlySelectedBackend(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Backend = BackendMemory
	cfg.Redis.Address = ""
	assert.NoError(t, cfg.Validate())

	cfg.Backend = BackendRedis
	assert.Error(t, cfg.Validate())

	cfg.Redis.Address = "localhost:6379"
	cfg.Windows.Persons = 0
	assert.Error(t, cfg.Validate())
}
