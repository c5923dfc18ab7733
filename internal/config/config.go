// Package config loads runtime configuration from flags, environment,
// an optional .poolstats.yaml file and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/pricefeed"
	"pool-stats-lab/internal/storage/clickhouse"
)

// EnvPrefix prefixes every environment variable, e.g. POOLSTATS_CSV_URL.
const EnvPrefix = "POOLSTATS"

// ErrInvalidConfig indicates that the resolved configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Source kinds.
const (
	SourceHTTP       = "http"
	SourceClickhouse = "clickhouse"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// Config is the resolved configuration.
type Config struct {
	// Row source
	Source          string `mapstructure:"source" validate:"oneof=http clickhouse"`
	CSVURL          string `mapstructure:"csv-url" validate:"required_if=Source http"`
	ClickhouseDSN   string `mapstructure:"clickhouse-dsn" validate:"required_if=Source clickhouse"`
	ClickhouseTable string `mapstructure:"clickhouse-table" validate:"required"`

	// Row cache
	CacheBackend  string        `mapstructure:"cache-backend" validate:"oneof=memory redis postgres none"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl" validate:"gte=0"`
	RedisAddr     string        `mapstructure:"redis-addr" validate:"required_if=CacheBackend redis"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db" validate:"gte=0"`
	PostgresDSN   string        `mapstructure:"postgres-dsn" validate:"required_if=CacheBackend postgres"`

	// Series processing
	BucketWidth   time.Duration    `mapstructure:"bucket-width" validate:"gt=0"`
	Window        time.Duration    `mapstructure:"window" validate:"gt=0"`
	EpochGrouping bool             `mapstructure:"epoch-grouping"`
	Columns       domain.ColumnMap `mapstructure:"columns"`

	// Exchange prices
	PriceEnabled bool          `mapstructure:"price-enabled"`
	PriceBaseURL string        `mapstructure:"price-base-url" validate:"required_if=PriceEnabled true"`
	PriceSymbolA string        `mapstructure:"price-symbol-a"`
	PriceSymbolB string        `mapstructure:"price-symbol-b"`
	PriceMaxAge  time.Duration `mapstructure:"price-max-age" validate:"gte=0"`

	// Transport and serving
	HTTPTimeout time.Duration `mapstructure:"http-timeout" validate:"gt=0"`
	HTTPRetries int           `mapstructure:"http-retries" validate:"gte=0,lte=10"`
	ListenAddr  string        `mapstructure:"listen-addr" validate:"required"`

	// Logging
	LogLevel  string `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log-format" validate:"oneof=console json"`
}

// Symbols returns the configured ticker symbols, skipping empty ones.
func (c *Config) Symbols() []string {
	var out []string
	for _, s := range []string{c.PriceSymbolA, c.PriceSymbolB} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source", SourceHTTP)
	v.SetDefault("csv-url", "")
	v.SetDefault("clickhouse-dsn", "")
	v.SetDefault("clickhouse-table", clickhouse.DefaultPoolStatsTable)
	v.SetDefault("cache-backend", CacheMemory)
	v.SetDefault("cache-ttl", 5*time.Minute)
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("redis-password", "")
	v.SetDefault("redis-db", 0)
	v.SetDefault("postgres-dsn", "")
	v.SetDefault("bucket-width", 5*time.Minute)
	v.SetDefault("window", 6*time.Hour)
	v.SetDefault("epoch-grouping", false)
	v.SetDefault("price-enabled", true)
	v.SetDefault("price-base-url", pricefeed.DefaultBaseURL)
	v.SetDefault("price-symbol-a", "XMRUSDT")
	v.SetDefault("price-symbol-b", "QUBICUSDT")
	v.SetDefault("price-max-age", 2*time.Hour)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("http-retries", 3)
	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")

	cols := domain.DefaultColumns()
	v.SetDefault("columns.timestamp", cols.Timestamp)
	v.SetDefault("columns.pool-hashrate", cols.PoolHashrate)
	v.SetDefault("columns.network-hashrate", cols.NetworkHashrate)
	v.SetDefault("columns.blocks-found", cols.BlocksFound)
	v.SetDefault("columns.epoch", cols.Epoch)
	v.SetDefault("columns.price-a", cols.PriceA)
	v.SetDefault("columns.price-b", cols.PriceB)
}

// LoadDotEnv loads variables from path into the process environment.
// A missing file is not an error; existing variables are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the optional config file and resolves v into a validated Config.
// configFile overrides the .poolstats.yaml lookup in the working and home directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".poolstats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg.Columns = cfg.Columns.WithDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
