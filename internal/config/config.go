package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config carries everything the application reads from the
// environment. It is built once in main and handed to components
// explicitly; there is no package-level instance.
type Config struct {
	AppName     string `env:"APP_NAME" env-default:"Go API Template"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	Debug       bool   `env:"DEBUG" env-default:"true"`
	Port        string `env:"PORT" env-default:"8000"`

	DatabaseURL   string `env:"DATABASE_URL" env-required:"true"`
	DBMaxOpen     int    `env:"DB_MAX_OPEN" env-default:"25"`
	DBMaxIdle     int    `env:"DB_MAX_IDLE" env-default:"25"`
	DBMaxLifetime int    `env:"DB_MAX_LIFETIME" env-default:"300"` // seconds

	JWTSecret                string `env:"JWT_SECRET" env-required:"true"`
	JWTAlgorithm             string `env:"JWT_ALGORITHM" env-default:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`

	CORSOrigins []string `env:"CORS_ORIGINS"`
	CORSHeaders []string `env:"CORS_HEADERS" env-default:"*"`
}

// Load reads a .env file if one is present, then the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// AccessTokenTTL returns the configured token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}
