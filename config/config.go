package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port        string
	FrontendURL string
	Environment string
	LogLevel    string
	RateLimit   int

	// Backends
	DataBackend  string
	AuthProvider string

	DatabaseURL       string
	DataEncryptionKey string

	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	MongoURI      string
	MongoDatabase string

	// Local auth
	JWTSecret      string
	AccessTokenTTL time.Duration
	ResendAPIKey   string
	EmailFrom      string

	// AMQP; profile creation goes through the queue when AMQPURL is set
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:8081"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		RateLimit:   getEnvInt("RATE_LIMIT_PER_MINUTE", 100),

		DataBackend:  getEnv("DATA_BACKEND", "postgres"),
		AuthProvider: getEnv("AUTH_PROVIDER", "local"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),

		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "pocketplan"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@pocketplan.app"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pocketplan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "user_confirmed"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NeedsPostgres reports whether any configured component uses DATABASE_URL.
func (c *Config) NeedsPostgres() bool {
	return c.DataBackend == "postgres" || c.AuthProvider == "local"
}

// NeedsSupabase reports whether any configured component uses the Supabase client.
func (c *Config) NeedsSupabase() bool {
	return c.DataBackend == "supabase" || c.AuthProvider == "supabase"
}

// Validate returns every configuration problem found, joined into one error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !oneOf(c.DataBackend, "postgres", "supabase", "mongo", "memory") {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of postgres, supabase, mongo, memory", c.DataBackend))
	}
	if !oneOf(c.AuthProvider, "local", "supabase") {
		errors = append(errors, fmt.Sprintf("invalid auth provider '%s': must be local or supabase", c.AuthProvider))
	}

	if c.NeedsPostgres() && c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required for the postgres backend and the local auth provider")
	}
	if c.DataEncryptionKey != "" && len(c.DataEncryptionKey) != 32 {
		errors = append(errors, "DATA_ENCRYPTION_KEY must be exactly 32 bytes")
	}
	if c.NeedsSupabase() {
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			errors = append(errors, "SUPABASE_URL and SUPABASE_KEY are required when using supabase")
		}
	}
	if c.AuthProvider == "supabase" && c.SupabaseJWTSecret == "" {
		errors = append(errors, "SUPABASE_JWT_SECRET is required for the supabase auth provider")
	}
	if c.DataBackend == "mongo" && c.MongoURI == "" {
		errors = append(errors, "MONGO_URI is required for the mongo backend")
	}
	if c.AuthProvider == "local" && len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters for the local auth provider")
	}
	if c.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be positive", c.RateLimit))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
