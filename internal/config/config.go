package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "your-secret-key-here-change-in-production", "secret", "admin", "password",
}

type Config struct {
	Environment           string        `env:"APP_ENV" envDefault:"development"`
	Port                  int           `env:"PORT" envDefault:"8000"`
	DatabaseURL           string        `env:"DATABASE_URL,required"`
	RedisURL              string        `env:"REDIS_URL,required"`
	JWTSecret             string        `env:"JWT_SECRET_KEY" envDefault:"your-secret-key-here-change-in-production"`
	AccessTokenExpireMins int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"1440"`
	CORSOrigins           []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	Debug                 bool          `env:"DEBUG" envDefault:"false"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	TrackRateLimitPerMin  int           `env:"TRACK_RATE_LIMIT_PER_MIN" envDefault:"30"`
	ExpirySweepInterval   time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"5m"`
	ChatRetentionDays     int           `env:"CHAT_RETENTION_DAYS" envDefault:"30"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMins) * time.Minute
}

func (c *Config) ChatRetention() time.Duration {
	return time.Duration(c.ChatRetentionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.AccessTokenExpireMins <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.ExpirySweepInterval <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be positive")
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET_KEY", c.JWTSecret); err != nil {
			return err
		}
		if c.Debug {
			log.Warn().Msg("DEBUG is enabled in production: internal error details will be returned to clients")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
