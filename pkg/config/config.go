package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TRUESTYLE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv     = "TRUESTYLE_APP_ENV"
	EnvPort       = "TRUESTYLE_APP_PORT"
	EnvDBDSN      = "TRUESTYLE_DB_DSN"
	EnvDBHost     = "TRUESTYLE_DB_HOST"
	EnvDBUser     = "TRUESTYLE_DB_USER"
	EnvDBName     = "TRUESTYLE_DB_NAME"
	EnvRedisURL   = "TRUESTYLE_REDIS_URL"
	EnvJWTSecret  = "TRUESTYLE_JWT_SECRET"
	EnvJWTIssuer  = "TRUESTYLE_JWT_ISSUER"
	EnvJWTExpMins = "TRUESTYLE_JWT_EXPIRATION_MINUTES"
	EnvGatewayKey = "TRUESTYLE_GATEWAY_KEY_ID"
	EnvGatewaySec = "TRUESTYLE_GATEWAY_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Checkout     CheckoutConfig
	Returns      ReturnsConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"TRUESTYLE_APP_ENV" required:"true"`
	Port         string `envconfig:"TRUESTYLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRUESTYLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRUESTYLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRUESTYLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRUESTYLE_DB_DSN"`
	Driver string `envconfig:"TRUESTYLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRUESTYLE_DB_HOST"`
	LegacyPort     int    `envconfig:"TRUESTYLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRUESTYLE_DB_USER"`
	LegacyPassword string `envconfig:"TRUESTYLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRUESTYLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRUESTYLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRUESTYLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRUESTYLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRUESTYLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRUESTYLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRUESTYLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRUESTYLE_REDIS_ADDR"`
	Password     string        `envconfig:"TRUESTYLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRUESTYLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRUESTYLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRUESTYLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRUESTYLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRUESTYLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRUESTYLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRUESTYLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRUESTYLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRUESTYLE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// GatewayConfig holds the payment gateway key pair used to create gateway
// orders and verify confirmation signatures.
type GatewayConfig struct {
	KeyID  string `envconfig:"TRUESTYLE_GATEWAY_KEY_ID"`
	Secret string `envconfig:"TRUESTYLE_GATEWAY_SECRET"`
}

type CheckoutConfig struct {
	PendingGatewayOrderTTL time.Duration `envconfig:"TRUESTYLE_CHECKOUT_PENDING_GATEWAY_ORDER_TTL" default:"30m"`
}

type ReturnsConfig struct {
	WindowDays int `envconfig:"TRUESTYLE_RETURNS_WINDOW_DAYS" default:"7"`
}

// Window is the post-delivery period during which returns and exchanges may
// be requested.
func (r ReturnsConfig) Window() time.Duration {
	days := r.WindowDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"TRUESTYLE_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutUserLimit int           `envconfig:"TRUESTYLE_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
	CheckoutIPLimit   int           `envconfig:"TRUESTYLE_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRUESTYLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRUESTYLE_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TRUESTYLE_CRON_INTERVAL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
