package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when resolving variables.
const EnvPrefix = "horologiq"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "HOROLOGIQ_APP_ENV"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	AdminAuth   AdminAuthConfig
	Outbox      OutboxConfig
	CatalogSync CatalogSyncConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOROLOGIQ_APP_ENV" required:"true"`
	Port         string `envconfig:"HOROLOGIQ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOROLOGIQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOROLOGIQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"HOROLOGIQ_DB_DSN"`

	Host     string `envconfig:"HOROLOGIQ_DB_HOST"`
	Port     int    `envconfig:"HOROLOGIQ_DB_PORT" default:"5432"`
	User     string `envconfig:"HOROLOGIQ_DB_USER"`
	Password string `envconfig:"HOROLOGIQ_DB_PASSWORD"`
	Name     string `envconfig:"HOROLOGIQ_DB_NAME"`
	SSLMode  string `envconfig:"HOROLOGIQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOROLOGIQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOROLOGIQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOROLOGIQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOROLOGIQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a connection string from discrete parts when DSN is not
// provided directly.
func (db *DBConfig) ensureDSN() error {
	if strings.TrimSpace(db.DSN) != "" {
		return nil
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("database config incomplete: set HOROLOGIQ_DB_DSN or host/user/name parts")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	q := url.Values{}
	q.Set("sslmode", db.SSLMode)
	u.RawQuery = q.Encode()
	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"HOROLOGIQ_REDIS_URL"`
	Address      string        `envconfig:"HOROLOGIQ_REDIS_ADDR"`
	Password     string        `envconfig:"HOROLOGIQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOROLOGIQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOROLOGIQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOROLOGIQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOROLOGIQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOROLOGIQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOROLOGIQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AdminAuthConfig covers verification of back-office access tokens. Token
// issuance lives with the identity provider, not this service.
type AdminAuthConfig struct {
	JWTSecret string `envconfig:"HOROLOGIQ_ADMIN_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"HOROLOGIQ_ADMIN_JWT_ISSUER" default:"horologiq"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HOROLOGIQ_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HOROLOGIQ_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HOROLOGIQ_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CatalogSyncConfig struct {
	Enabled     bool   `envconfig:"HOROLOGIQ_CATALOG_SYNC_ENABLED" default:"false"`
	CatalogID   string `envconfig:"HOROLOGIQ_CATALOG_ID"`
	ProductBase string `envconfig:"HOROLOGIQ_CATALOG_PRODUCT_BASE_URL" default:"https://horologiq.com/products"`
}
