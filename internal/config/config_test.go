package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POOLSTATS_CSV_URL", "https://example.com/stats.csv")

	cfg, err := Load(newViperInDir(t), "")
	require.NoError(t, err)

	assert.Equal(t, SourceHTTP, cfg.Source)
	assert.Equal(t, "https://example.com/stats.csv", cfg.CSVURL)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.BucketWidth)
	assert.Equal(t, 6*time.Hour, cfg.Window)
	assert.Equal(t, "timestamp", cfg.Columns.Timestamp)
	assert.Equal(t, "pool_blocks_found", cfg.Columns.BlocksFound)
	assert.Equal(t, []string{"XMRUSDT", "QUBICUSDT"}, cfg.Symbols())
}

// newViperInDir returns a viper whose config search path is an empty directory.
func newViperInDir(t *testing.T) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return newViper()
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: clickhouse
clickhouse-dsn: clickhouse://localhost:9000/default
cache-backend: redis
bucket-width: 10m
epoch-grouping: true
columns:
  pool-hashrate: hashrate
`), 0o600))
	t.Setenv("POOLSTATS_WINDOW", "2h")
	t.Setenv("POOLSTATS_COLUMNS_TIMESTAMP", "ts")

	cfg, err := Load(newViper(), path)
	require.NoError(t, err)

	assert.Equal(t, SourceClickhouse, cfg.Source)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.BucketWidth)
	assert.Equal(t, 2*time.Hour, cfg.Window)
	assert.True(t, cfg.EpochGrouping)
	assert.Equal(t, "hashrate", cfg.Columns.PoolHashrate)
	assert.Equal(t, "ts", cfg.Columns.Timestamp)
	assert.Equal(t, "network_hashrate", cfg.Columns.NetworkHashrate)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Source:          SourceHTTP,
			CSVURL:          "https://example.com/stats.csv",
			ClickhouseTable: "pool_stats",
			CacheBackend:    CacheNone,
			BucketWidth:     5 * time.Minute,
			Window:          6 * time.Hour,
			HTTPTimeout:     time.Second,
			ListenAddr:      ":8080",
			LogLevel:        "info",
			LogFormat:       "json",
		}
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source = "ftp" }},
		{"http without url", func(c *Config) { c.CSVURL = "" }},
		{"clickhouse without dsn", func(c *Config) { c.Source = SourceClickhouse }},
		{"redis without addr", func(c *Config) { c.CacheBackend = CacheRedis }},
		{"postgres without dsn", func(c *Config) { c.CacheBackend = CachePostgres }},
		{"unknown cache", func(c *Config) { c.CacheBackend = "memcached" }},
		{"zero bucket width", func(c *Config) { c.BucketWidth = 0 }},
		{"negative window", func(c *Config) { c.Window = -time.Hour }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"price without base url", func(c *Config) { c.PriceEnabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POOLSTATS_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("POOLSTATS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("POOLSTATS_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("POOLSTATS_TEST_DOTENV"))
}
