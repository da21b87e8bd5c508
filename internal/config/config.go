package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	DemoMode bool   // In-memory store + simulated payment instead of Mongo

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Payment simulation (demo only)
	PaymentSimEnabled     bool
	PaymentSimDelay       time.Duration
	PaymentSimSuccessRate float64

	// Listing queries
	DefaultListingLimit int
	MaxListingLimit     int

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// Rate Limiting
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.DemoMode, err = strconv.ParseBool(getEnv("DEMO_MODE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEMO_MODE: %w", err)
	}

	// Mongo and Redis are only required outside demo mode.
	if cfg.DemoMode {
		cfg.MongoURI = getEnv("MONGO_URI", "")
	} else {
		cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
		if err != nil {
			return nil, err
		}
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "timevault")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.ApiPort = getEnv("API_PORT", "8080")

	cfg.PaymentSimEnabled, err = strconv.ParseBool(getEnv("PAYMENT_SIM_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_SIM_ENABLED: %w", err)
	}
	paymentDelayMs, err := strconv.ParseInt(getEnv("PAYMENT_SIM_DELAY_MS", "1500"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_SIM_DELAY_MS: %w", err)
	}
	cfg.PaymentSimDelay = time.Duration(paymentDelayMs) * time.Millisecond
	cfg.PaymentSimSuccessRate, err = strconv.ParseFloat(getEnv("PAYMENT_SIM_SUCCESS_RATE", "0.9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_SIM_SUCCESS_RATE: %w", err)
	}
	if cfg.PaymentSimSuccessRate < 0 || cfg.PaymentSimSuccessRate > 1 {
		return nil, fmt.Errorf("PAYMENT_SIM_SUCCESS_RATE must be between 0 and 1, got %g", cfg.PaymentSimSuccessRate)
	}

	cfg.DefaultListingLimit, err = strconv.Atoi(getEnv("DEFAULT_LISTING_LIMIT", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LISTING_LIMIT: %w", err)
	}
	cfg.MaxListingLimit, err = strconv.Atoi(getEnv("MAX_LISTING_LIMIT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_LISTING_LIMIT: %w", err)
	}

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@timevault.example.com")

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
