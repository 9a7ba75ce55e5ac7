package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"jobportal"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"jobportal"`
	// DatabaseURL, when set, overrides the DB_* settings.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Empty disables job events.
	NSQDHost string `envconfig:"NSQD_HOST"`

	// Completion provider
	LLMProvider       string `envconfig:"LLM_PROVIDER" default:"openrouter"`
	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel   string `envconfig:"OPENROUTER_MODEL" default:"openai/gpt-3.5-turbo"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AppURL            string `envconfig:"APP_URL" default:"http://localhost:3000"`
	AppTitle          string `envconfig:"APP_TITLE" default:"Job Portal"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	LLMTimeoutSeconds int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"0"`

	// Empty uses the built-in job posting schema.
	SchemaPath string `envconfig:"SCHEMA_PATH"`

	// Server
	ServerPort     int      `envconfig:"SERVER_PORT" default:"5000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5000"`
	MaxBodySizeMB  int64    `envconfig:"MAX_BODY_SIZE_MB" default:"50"`
	AuditLogPath   string   `envconfig:"AUDIT_LOG_PATH" default:"data/logs/audit.log"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		if c.DBHost == "" {
			return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
		}
		if c.DBUser == "" {
			return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
		}
		if c.DBName == "" {
			return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
		}
	}

	switch c.LLMProvider {
	case ProviderOpenRouter, "":
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY", ErrMissingRequired)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: LLM_PROVIDER %q", ErrInvalid, c.LLMProvider)
	}

	if c.LLMTimeoutSeconds < 0 {
		return fmt.Errorf("%w: LLM_TIMEOUT_SECONDS must not be negative", ErrInvalid)
	}
	if c.MaxBodySizeMB <= 0 {
		return fmt.Errorf("%w: MAX_BODY_SIZE_MB must be positive", ErrInvalid)
	}
	return nil
}

// DSN is the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) MaxBodyBytes() int64 {
	return c.MaxBodySizeMB << 20
}
