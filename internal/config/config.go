package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Toast    ToastConfig
	Profile  ProfileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("redis storage requires %s_REDIS_URL or %s_REDIS_ADDR", EnvPrefix, EnvPrefix)
		}
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres storage requires %s_POSTGRES_DSN", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if len(c.Auth.TokenSecret) < 32 {
		return fmt.Errorf("%s_TOKEN_SECRET must be at least 32 characters long", EnvPrefix)
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("%s_CATALOG_PAGE_SIZE must be positive", EnvPrefix)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port      string `envconfig:"STOREFRONT_PORT" default:"8080"`
	LogLevel  string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
}

type CatalogConfig struct {
	// Source is a file path or an http(s) URL serving the product JSON array.
	Source          string        `envconfig:"STOREFRONT_CATALOG_SOURCE" default:"products.json"`
	FetchTimeout    time.Duration `envconfig:"STOREFRONT_CATALOG_FETCH_TIMEOUT" default:"10s"`
	PageSize        int           `envconfig:"STOREFRONT_CATALOG_PAGE_SIZE" default:"12"`
	FreshnessWindow time.Duration `envconfig:"STOREFRONT_CATALOG_FRESHNESS_WINDOW" default:"720h"`
}

type StorageConfig struct {
	Backend string        `envconfig:"STOREFRONT_STORAGE_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"STOREFRONT_STORAGE_TTL" default:"0s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type PostgresConfig struct {
	DSN             string        `envconfig:"STOREFRONT_POSTGRES_DSN"`
	MaxOpenConns    int           `envconfig:"STOREFRONT_POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_POSTGRES_CONN_MAX_LIFETIME" default:"1h"`
}

type KafkaConfig struct {
	// Brokers empty disables activity publishing.
	Brokers []string `envconfig:"STOREFRONT_KAFKA_BROKERS"`
	Topic   string   `envconfig:"STOREFRONT_KAFKA_TOPIC" default:"storefront-activity"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type AuthConfig struct {
	TokenSecret string        `envconfig:"STOREFRONT_TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"STOREFRONT_TOKEN_TTL" default:"8760h"`
	CookieName  string        `envconfig:"STOREFRONT_COOKIE_NAME" default:"profile_token"`
}

type ToastConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_TOAST_TTL" default:"3s"`
}

type ProfileConfig struct {
	// IdleTTL zero keeps every hydrated profile in memory until shutdown.
	IdleTTL       time.Duration `envconfig:"STOREFRONT_PROFILE_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_PROFILE_SWEEP_INTERVAL" default:"1m"`
}
