package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Site      SiteConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Stripe    StripeConfig
	RateLimit RateLimitConfig
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
	Env          string `envconfig:"LEARNLOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"LEARNLOOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEARNLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEARNLOOP_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"LEARNLOOP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SiteConfig carries the public-facing frontend origin used to build
// checkout success/cancel redirects.
type SiteConfig struct {
	BaseURL string `envconfig:"LEARNLOOP_SITE_BASE_URL" required:"true"`
}

type DBConfig struct {
	DSN    string `envconfig:"LEARNLOOP_DB_DSN"`
	Driver string `envconfig:"LEARNLOOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEARNLOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"LEARNLOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEARNLOOP_DB_USER"`
	LegacyPassword string `envconfig:"LEARNLOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEARNLOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEARNLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEARNLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEARNLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEARNLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEARNLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEARNLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEARNLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"LEARNLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEARNLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEARNLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEARNLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEARNLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEARNLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEARNLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LEARNLOOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LEARNLOOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LEARNLOOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

// PasswordConfig tunes the Argon2id hashing parameters.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LEARNLOOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LEARNLOOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LEARNLOOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LEARNLOOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LEARNLOOP_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig throttles checkout session creation.
type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"LEARNLOOP_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit   int           `envconfig:"LEARNLOOP_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
	CheckoutUserLimit int           `envconfig:"LEARNLOOP_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
}

type StripeConfig struct {
	APIKey            string        `envconfig:"LEARNLOOP_STRIPE_API_KEY"`
	Secret            string        `envconfig:"LEARNLOOP_STRIPE_WEBHOOK_SECRET"`
	Env               string        `envconfig:"LEARNLOOP_STRIPE_ENV" default:"test"`
	CommissionPercent float64       `envconfig:"LEARNLOOP_STRIPE_COMMISSION_PERCENT" default:"5"`
	WebhookEventTTL   time.Duration `envconfig:"LEARNLOOP_STRIPE_WEBHOOK_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
