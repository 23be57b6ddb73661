package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Payment   PaymentConfig
	AI        AIConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains identity verification configuration
type AuthConfig struct {
	// Mode is "jwt" (shared HS256 secret) or "oidc"
	Mode         string
	JWTSecret    string
	OIDCIssuer   string
	OIDCAudience string
}

// PaymentConfig contains payment gateway configuration
type PaymentConfig struct {
	// Gateway is "razorpay" or "stripe"
	Gateway         string
	KeyID           string
	KeySecret       string
	BaseURL         string
	StripeSecretKey string
	// SignatureSecret signs orderId|paymentId; defaults to KeySecret
	SignatureSecret string
	FetchTimeout    time.Duration
	// ExpirySweepInterval is how often lapsed subscriptions are soft-expired;
	// zero disables the sweeper
	ExpirySweepInterval time.Duration
}

// AIConfig contains meal plan generator configuration
type AIConfig struct {
	// Provider is "openai" or "gemini"
	Provider     string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	MaxTokens    int
}

// CatalogConfig contains plan catalog configuration
type CatalogConfig struct {
	RefreshSchedule string
}

// RateLimitConfig contains HTTP rate limit configuration
type RateLimitConfig struct {
	RequestsPerSecond     float64
	Burst                 int
	UserRequestsPerSecond float64
	UserBurst             int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "mealplanner"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./mealplanner.db"),
		},
		Auth: AuthConfig{
			Mode:         getEnv("AUTH_MODE", "jwt"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
			OIDCAudience: getEnv("OIDC_AUDIENCE", ""),
		},
		Payment: PaymentConfig{
			Gateway:         getEnv("PAYMENT_GATEWAY", "razorpay"),
			KeyID:           getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:       getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:         getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			SignatureSecret: getEnv("PAYMENT_SIGNATURE_SECRET", ""),
			FetchTimeout:    getEnvAsDuration("PAYMENT_FETCH_TIMEOUT", 10*time.Second),

			ExpirySweepInterval: getEnvAsDuration("SUBSCRIPTION_EXPIRY_INTERVAL", 15*time.Minute),
		},
		AI: AIConfig{
			Provider:     getEnv("AI_PROVIDER", "openai"),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			MaxTokens:    getEnvAsInt("AI_MAX_TOKENS", 2000),
		},
		Catalog: CatalogConfig{
			RefreshSchedule: getEnv("CATALOG_REFRESH_SCHEDULE", "@every 5m"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:     getEnvAsFloat("RATE_LIMIT_RPS", 50),
			Burst:                 getEnvAsInt("RATE_LIMIT_BURST", 100),
			UserRequestsPerSecond: getEnvAsFloat("USER_RATE_LIMIT_RPS", 2),
			UserBurst:             getEnvAsInt("USER_RATE_LIMIT_BURST", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Payment.SignatureSecret == "" {
		cfg.Payment.SignatureSecret = cfg.Payment.KeySecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Auth.Mode {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set when AUTH_MODE=jwt")
		}
	case "oidc":
		if c.Auth.OIDCIssuer == "" || c.Auth.OIDCAudience == "" {
			return fmt.Errorf("OIDC_ISSUER and OIDC_AUDIENCE must be set when AUTH_MODE=oidc")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.Auth.Mode)
	}

	switch c.Payment.Gateway {
	case "razorpay":
		if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
		}
	case "stripe":
		if c.Payment.StripeSecretKey == "" || c.Payment.SignatureSecret == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY and PAYMENT_SIGNATURE_SECRET must be set")
		}
	default:
		return fmt.Errorf("unsupported payment gateway: %s", c.Payment.Gateway)
	}

	switch strings.ToLower(c.AI.Provider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
