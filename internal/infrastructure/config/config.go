package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`

	Mongo     MongoConfig
	Redis     RedisConfig
	ImageHost ImageHostConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=campus_issues"`
	// Transactions requires a replica set.
	Transactions bool `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// ImageHostConfig points at the S3-compatible bucket uploaded images are
// relayed to. PublicURL is the base images are served from; when empty the
// endpoint URL is used.
type ImageHostConfig struct {
	Endpoint  string `env:"IMAGE_HOST_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"IMAGE_HOST_ACCESS_KEY"`
	SecretKey string `env:"IMAGE_HOST_SECRET_KEY"`
	Bucket    string `env:"IMAGE_HOST_BUCKET,     default=issue-images"`
	Region    string `env:"IMAGE_HOST_REGION"`
	UseSSL    bool   `env:"IMAGE_HOST_USE_SSL,    default=false"`
	PublicURL string `env:"IMAGE_HOST_PUBLIC_URL"`
	Workers   int    `env:"IMAGE_CLEANUP_WORKERS, default=4"`
}

// AdminConfig seeds an admin account at startup. Leave Email empty to skip.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=Administrator"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// RateLimitConfig throttles the unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	Rate  float64 `env:"RATE_LIMIT_RPS,   default=1"`
	Burst int     `env:"RATE_LIMIT_BURST, default=10"`
}

type JobsConfig struct {
	// OrphanSweepSchedule is a cron spec; empty disables the sweep.
	OrphanSweepSchedule string `env:"ORPHAN_SWEEP_SCHEDULE, default=@every 1h"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context, log zerolog.Logger) (*Config, error) {
	return load(ctx, envconfig.OsLookuper(), log)
}

func load(ctx context.Context, lookuper envconfig.Lookuper, log zerolog.Logger) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().Str("env", cfg.Env).Str("port", cfg.Port).Msg("configuration loaded")
	return &cfg, nil
}
