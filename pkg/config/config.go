package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "VOLTLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Canonical env var names, kept in one place so tests and error messages agree.
const (
	EnvAppEnv     = "VOLTLINE_APP_ENV"
	EnvPort       = "VOLTLINE_APP_PORT"
	EnvDBDSN      = "VOLTLINE_DB_DSN"
	EnvRedisURL   = "VOLTLINE_REDIS_URL"
	EnvJWTSecret  = "VOLTLINE_JWT_SECRET"
	EnvJWTIssuer  = "VOLTLINE_JWT_ISSUER"
	EnvJWTExpMins = "VOLTLINE_JWT_EXPIRATION_MINUTES"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Checkout  CheckoutConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Notify    NotifyConfig
	RateLimit AuthRateLimitConfig
	Features  FeatureFlagsConfig
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
	Env          string `envconfig:"VOLTLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"VOLTLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VOLTLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VOLTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"VOLTLINE_DB_DSN"`

	Host     string `envconfig:"VOLTLINE_DB_HOST"`
	Port     int    `envconfig:"VOLTLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"VOLTLINE_DB_USER"`
	Password string `envconfig:"VOLTLINE_DB_PASSWORD"`
	Name     string `envconfig:"VOLTLINE_DB_NAME"`
	SSLMode  string `envconfig:"VOLTLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOLTLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOLTLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOLTLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOLTLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"VOLTLINE_DB_AUTO_MIGRATE" default:"false"`
}

// ensureDSN backfills DSN from the discrete host settings when unset.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	var missing []string
	if d.Host == "" {
		missing = append(missing, "VOLTLINE_DB_HOST")
	}
	if d.User == "" {
		missing = append(missing, "VOLTLINE_DB_USER")
	}
	if d.Name == "" {
		missing = append(missing, "VOLTLINE_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VOLTLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VOLTLINE_REDIS_ADDR"`
	Password     string        `envconfig:"VOLTLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOLTLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOLTLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOLTLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOLTLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOLTLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOLTLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VOLTLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VOLTLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VOLTLINE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VOLTLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VOLTLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VOLTLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VOLTLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VOLTLINE_ARGON_KEY_LEN" default:"32"`
}

// CheckoutConfig tunes order creation. LocalPincodePrefixes decides the
// LOCAL vs COURIER delivery type derived from the destination postal code.
type CheckoutConfig struct {
	LocalPincodePrefixes   []string `envconfig:"VOLTLINE_LOCAL_PINCODE_PREFIXES" default:"395,394"`
	FreeDeliveryAbovePaise int      `envconfig:"VOLTLINE_FREE_DELIVERY_ABOVE_PAISE" default:"99900"`
	ShippingFeePaise       int      `envconfig:"VOLTLINE_SHIPPING_FEE_PAISE" default:"4900"`
	QuickDeliveryFeePaise  int      `envconfig:"VOLTLINE_QUICK_DELIVERY_FEE_PAISE" default:"9900"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"VOLTLINE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	AdminAlertsTopic string `envconfig:"VOLTLINE_PUBSUB_ADMIN_ALERTS_TOPIC" default:"admin-alerts"`
}

// NotifyConfig bounds the advisory admin-channel send. The publish is
// fire-and-forget relative to the order status write.
type NotifyConfig struct {
	Timeout time.Duration `envconfig:"VOLTLINE_NOTIFY_TIMEOUT" default:"3s"`
}

// AuthRateLimitConfig throttles the unauthenticated auth surface. A limit of
// zero disables the corresponding counter.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VOLTLINE_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"VOLTLINE_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"VOLTLINE_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"VOLTLINE_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"VOLTLINE_RL_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"VOLTLINE_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VOLTLINE_AUTO_MIGRATE" default:"false"`
}
