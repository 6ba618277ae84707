package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shophub/storefront/pkg/enums"
)

type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	Storage StorageConfig
	Redis   RedisConfig
	JWT     JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPHUB_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SHOPHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"SHOPHUB_CATALOG_BASE_URL" default:"https://fakestoreapi.com"`
	Timeout time.Duration `envconfig:"SHOPHUB_CATALOG_TIMEOUT" default:"10s"`
}

type StorageConfig struct {
	Backend    string `envconfig:"SHOPHUB_STORAGE_BACKEND" default:"file"`
	Dir        string `envconfig:"SHOPHUB_STORAGE_DIR" default:".shophub"`
	SQLitePath string `envconfig:"SHOPHUB_SQLITE_PATH" default:"shophub.db"`
}

// ParsedBackend returns the validated backend enum.
func (s StorageConfig) ParsedBackend() enums.StorageBackend {
	backend, err := enums.ParseStorageBackend(s.Backend)
	if err != nil {
		return enums.StorageBackendFile
	}
	return backend
}

func (s StorageConfig) validate() error {
	if _, err := enums.ParseStorageBackend(s.Backend); err != nil {
		return fmt.Errorf("%s: %w", EnvStorageBackend, err)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPHUB_REDIS_URL"`
	Address      string        `envconfig:"SHOPHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPHUB_JWT_SECRET" default:"shophub-local-dev"`
	Issuer            string `envconfig:"SHOPHUB_JWT_ISSUER" default:"shophub"`
	ExpirationMinutes int    `envconfig:"SHOPHUB_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the configured token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}
