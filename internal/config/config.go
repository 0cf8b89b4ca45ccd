package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Remote model settings
	GeminiAPIKey       string        `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey    string        `envconfig:"ANTHROPIC_API_KEY"`
	TranscribeProvider string        `envconfig:"TRANSCRIBE_PROVIDER" default:"gemini"`
	RefineProvider     string        `envconfig:"REFINE_PROVIDER" default:"gemini"`
	GeminiModel        string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	RemoteTimeout      time.Duration `envconfig:"REMOTE_TIMEOUT" default:"0s"`
	RequireCredentials bool          `envconfig:"REQUIRE_CREDENTIALS" default:"false"`

	// Upload and session settings
	MaxUploadBytes   int64         `envconfig:"MAX_UPLOAD_BYTES" default:"2147483648"`
	InlineLimitBytes int           `envconfig:"INLINE_LIMIT_BYTES" default:"20971520"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"2h"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &config, nil
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		// Production CSP
		return "default-src 'self'; " +
			"style-src 'self'; " +
			"script-src 'self'; " +
			"connect-src 'self' ws: wss:; " +
			"img-src 'self' data:; " +
			"media-src 'self' blob:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"connect-src 'self' ws: wss:; " +
		"img-src 'self' data:; " +
		"media-src 'self' blob:"
}
