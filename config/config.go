package config

import (
	"errors"
	"fmt"
	"os"
	"staffing/persistence"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"staffing"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	Database persistence.DatabaseConfig
	Security SecurityConfig
	Gemini   GeminiConfig
	Search   SearchConfig

	CorsOrigins    []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000"`
	TracingEnabled bool     `env:"TRACING_ENABLED" envDefault:"false"`
}

type SecurityConfig struct {
	JWTSecret            string        `env:"JWT_SECRET"`
	TokenTTL             time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	InitialAdminEmail    string        `env:"INITIAL_ADMIN_EMAIL" envDefault:"directeur@staffing.local"`
	InitialAdminPassword string        `env:"INITIAL_ADMIN_PASSWORD"`
}

type GeminiConfig struct {
	APIKey        string        `env:"GEMINI_API_KEY"`
	Model         string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	BaseURL       string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout       time.Duration `env:"GEMINI_TIMEOUT" envDefault:"10s"`
	RatePerSecond float64       `env:"ASSISTANT_RATE" envDefault:"2"`
	RateBurst     int           `env:"ASSISTANT_BURST" envDefault:"5"`
}

type SearchConfig struct {
	Addresses  []string `env:"ES_ADDRESSES"`
	AuditIndex string   `env:"ES_AUDIT_INDEX" envDefault:"staffing-audit"`
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load reads an optional dotenv file and then parses the process environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// variables already set in the process win over the file
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.Security.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
