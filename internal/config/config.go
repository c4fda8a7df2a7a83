package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	Model            string        `env:"BACKROOMS_MODEL" envDefault:"gemini-2.5-flash"`
	GeneratorTimeout time.Duration `env:"BACKROOMS_GENERATOR_TIMEOUT" envDefault:"20s"`

	Store      string `env:"BACKROOMS_STORE" envDefault:"yaml"`
	SaveDir    string `env:"BACKROOMS_SAVE_DIR" envDefault:".saves"`
	SQLitePath string `env:"BACKROOMS_SQLITE_PATH" envDefault:"backrooms.db"`

	// Player names the local player for the terminal client.
	Player string `env:"BACKROOMS_PLAYER"`

	Addr      string        `env:"BACKROOMS_ADDR" envDefault:":8080"`
	JWTSecret string        `env:"BACKROOMS_JWT_SECRET"`
	TokenTTL  time.Duration `env:"BACKROOMS_TOKEN_TTL" envDefault:"24h"`

	OTelEndpoint string `env:"BACKROOMS_OTEL_ENDPOINT"`
}

// LoadConfig loads the configuration from environment variables. A .env
// file in the working directory is read first if present; variables already
// set in the environment win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is not set")
	}
	switch cfg.Store {
	case "yaml", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("BACKROOMS_STORE must be yaml, sqlite or memory, got %q", cfg.Store)
	}
	if cfg.GeneratorTimeout <= 0 {
		return nil, fmt.Errorf("BACKROOMS_GENERATOR_TIMEOUT must be positive, got %v", cfg.GeneratorTimeout)
	}
	return &cfg, nil
}
