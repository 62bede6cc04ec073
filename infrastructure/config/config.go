package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	UsernameIndex string // GSI1 - lookups by username
	EmailIndex    string // GSI2 - lookups by email, global post feed
	EventBusName  string

	// Media storage
	MediaBucket string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Observability
	EnableMetrics    bool
	EnableTracing    bool
	MetricsNamespace string
	TracingEndpoint  string

	EnableCORS bool

	// Request body cap in bytes (images travel base64-encoded in JSON)
	MaxBodyBytes int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "chirp"),
		UsernameIndex: getEnv("USERNAME_INDEX", "UsernameIndex"),
		EmailIndex:    getEnv("EMAIL_INDEX", "EmailIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "chirp-events"),

		MediaBucket: getEnv("MEDIA_BUCKET", "chirp-media"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "chirp-backend"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "Chirp"),
		TracingEndpoint:  getEnv("TRACING_ENDPOINT", "localhost:4317"),
		EnableCORS:       getEnvBool("ENABLE_CORS", true),

		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "development-secret-change-in-production"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.MediaBucket == "" {
			return fmt.Errorf("MEDIA_BUCKET is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
