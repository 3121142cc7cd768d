// Package config loads process configuration from the environment. An
// optional .env file in the working directory is read first; variables
// already present in the environment take precedence over it.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=3000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,  default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	CORSOrigins     []string      `env:"CORS_ORIGIN,      default=*"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	SMTP      SMTPConfig
	MinIO     MinIOConfig
	Reports   ReportsConfig
	Reconcile ReconcileConfig
}

// AuthConfig selects the token verifier. An issuer switches to OIDC; otherwise
// tokens are HS256 signed with JWTSecret.
type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET"`
	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=law_crm"`
}

// RedisConfig is optional. Without an address the rate limiter keeps its
// buckets in process memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	RPS    float64       `env:"RATE_LIMIT_RPS,    default=10"`
	Burst  int           `env:"RATE_LIMIT_BURST,  default=20"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

type SMTPConfig struct {
	Host          string `env:"SMTP_HOST"`
	Port          int    `env:"SMTP_PORT,      default=587"`
	Username      string `env:"SMTP_USER"`
	Password      string `env:"SMTP_PASS"`
	From          string `env:"SMTP_FROM"`
	TestTo        string `env:"TEST_EMAIL_TO"`
	NotifyWorkers int    `env:"NOTIFY_WORKERS, default=4"`
}

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
	Bucket    string `env:"MINIO_BUCKET,  default=client-documents"`
}

type ReportsConfig struct {
	Timezone       string `env:"REPORT_TIMEZONE, default=UTC"`
	CurrencySymbol string `env:"CURRENCY_SYMBOL, default=$"`
}

type ReconcileConfig struct {
	Interval time.Duration `env:"RECONCILE_INTERVAL, default=1m"`
	Grace    time.Duration `env:"RECONCILE_GRACE,    default=30s"`
}

// Load reads .env (if present) and the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.OIDCIssuer == "" && c.Auth.JWTSecret == "" {
		return errors.New("either OIDC_ISSUER or JWT_SECRET must be set")
	}
	if c.Auth.OIDCIssuer != "" && c.Auth.OIDCClientID == "" {
		return errors.New("OIDC_CLIENT_ID is required with OIDC_ISSUER")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return errors.New("SMTP_FROM is required with SMTP_HOST")
	}
	if c.MinIO.Endpoint != "" && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	}
	if _, err := time.LoadLocation(c.Reports.Timezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the report time zone. It has already been validated by Load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment reports whether ENV names a local development setup.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
