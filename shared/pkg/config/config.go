package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type RabbitConfig struct {
	URL string `env:"RABBIT_URL"`
}

type PostgresConfig struct {
	DSN       string `env:"POSTGRES_DSN"`
	DSNLegacy string `env:"PG_DSN"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Common struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"service"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// StorageConfig selects the backing store of the storefront API.
// "memory" keeps everything in process and is meant for local runs and demos.
type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`
}

type AuthConfig struct {
	JWTSecret        string        `env:"AUTH_JWT_SECRET"`
	TokenTTL         time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	BcryptCost       int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	AllowAdminSignup bool          `env:"AUTH_ALLOW_ADMIN_SIGNUP" envDefault:"false"`
}

type CartConfig struct {
	TTL time.Duration `env:"CART_TTL" envDefault:"72h"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type OutboxConfig struct {
	Addr         string        `env:"OUTBOX_HTTP_ADDR" envDefault:":8081"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`
	MaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"10"`
	BackoffMax   time.Duration `env:"OUTBOX_BACKOFF_MAX" envDefault:"60s"`
}

type NotifyConfig struct {
	Addr        string        `env:"NOTIFY_HTTP_ADDR" envDefault:":8082"`
	Prefetch    int           `env:"NOTIFY_PREFETCH" envDefault:"50"`
	MaxAttempts int32         `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay  time.Duration `env:"NOTIFY_RETRY_DELAY" envDefault:"5s"`
	DedupeTTL   time.Duration `env:"NOTIFY_DEDUPE_TTL" envDefault:"24h"`
}

type Config struct {
	Common   Common
	Rabbit   RabbitConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Cart     CartConfig
	Catalog  CatalogConfig
	CORS     CORSConfig
	Outbox   OutboxConfig
	Notify   NotifyConfig
}

func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom is Load over an explicit environment, used by tests.
func LoadFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, err
	}
	if cfg.Postgres.DSN == "" {
		cfg.Postgres.DSN = cfg.Postgres.DSNLegacy
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	return cfg, nil
}

var (
	ErrMissingDSN       = errors.New("POSTGRES_DSN (or PG_DSN) is required")
	ErrMissingRabbitURL = errors.New("RABBIT_URL is required")
	ErrMissingRedis     = errors.New("REDIS_ADDR is required")
	ErrMissingSecret    = errors.New("AUTH_JWT_SECRET is required")
	ErrUnknownDriver    = errors.New("STORAGE_DRIVER must be postgres or memory")
)

// ValidateAPI checks what the storefront API needs before it starts.
func (c Config) ValidateAPI() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return ErrUnknownDriver
	}
	return nil
}
