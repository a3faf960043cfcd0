package config

import (
	"bytes"
	"crypto/aes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hcm/internal/platform/crypto"
)

// Development cipher material. These match the values historical rows were
// encrypted with and must never be used in production.
const (
	DevFieldCipherKey = "A1B2C3D4E5F6G7H8I9J0K1L2M3N4O5P6"
	DevFieldCipherIV  = "1A2B3C4D5E6F7G8H"
)

type Config struct {
	Addr                       string
	DatabaseURL                string
	JWTSecret                  string
	TokenTTL                   time.Duration
	FieldCipherKey             string
	FieldCipherIV              string
	DataEncryptionKey          string
	Environment                string
	LogLevel                   string
	RunMigrations              bool
	RunSeed                    bool
	MaxBodyBytes               int64
	LoginRateLimitPerMinute    int
	MutationRateLimitPerMinute int
	TrustProxyHeaders          bool
	WorkingDaysAPIURL          string
	WorkingDaysAPIKey          string
	MetricsEnabled             bool
	ShutdownTimeout            time.Duration
	HousekeepingInterval       time.Duration
	IdempotencyTTL             time.Duration
	AuditRetention             time.Duration
}

func Load() Config {
	return Config{
		Addr:                       getEnv("APP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		JWTSecret:                  getEnv("JWT_SECRET", ""),
		TokenTTL:                   getEnvDuration("TOKEN_TTL", 8*time.Hour),
		FieldCipherKey:             getEnv("FIELD_CIPHER_KEY", DevFieldCipherKey),
		FieldCipherIV:              getEnv("FIELD_CIPHER_IV", DevFieldCipherIV),
		DataEncryptionKey:          getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:                getEnv("APP_ENV", "development"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		RunMigrations:              getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                    getEnvBool("RUN_SEED", true),
		MaxBodyBytes:               int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		LoginRateLimitPerMinute:    getEnvInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10),
		MutationRateLimitPerMinute: getEnvInt("MUTATION_RATE_LIMIT_PER_MINUTE", 60),
		TrustProxyHeaders:          getEnvBool("TRUST_PROXY_HEADERS", false),
		WorkingDaysAPIURL:          getEnv("WORKING_DAYS_API_URL", "https://api.api-ninjas.com"),
		WorkingDaysAPIKey:          getEnv("WORKING_DAYS_API_KEY", ""),
		MetricsEnabled:             getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:            getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		HousekeepingInterval:       getEnvDuration("HOUSEKEEPING_INTERVAL", time.Hour),
		IdempotencyTTL:             getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		AuditRetention:             getEnvDuration("AUDIT_RETENTION", 0),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.FieldCipherKey) == "" || strings.TrimSpace(c.FieldCipherIV) == "" {
		return fmt.Errorf("FIELD_CIPHER_KEY and FIELD_CIPHER_IV are required")
	}
	if c.IsProduction() {
		if sameSecret(c.FieldCipherKey, DevFieldCipherKey, 32) || sameSecret(c.FieldCipherIV, DevFieldCipherIV, aes.BlockSize) {
			return fmt.Errorf("FIELD_CIPHER_KEY and FIELD_CIPHER_IV must be overridden in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for mfa secrets")
		}
		if c.RunSeed {
			return fmt.Errorf("RUN_SEED must be disabled in production")
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.LoginRateLimitPerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.MutationRateLimitPerMinute <= 0 {
		return fmt.Errorf("MUTATION_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	if c.AuditRetention < 0 {
		return fmt.Errorf("AUDIT_RETENTION must not be negative")
	}
	return nil
}

// sameSecret reports whether value decodes to the same bytes as dev, so a
// hex or base64 spelling of the development material is still caught.
func sameSecret(value, dev string, size int) bool {
	got, err := crypto.DecodeSecret(strings.TrimSpace(value), size)
	if err != nil {
		return false
	}
	want, err := crypto.DecodeSecret(dev, size)
	if err != nil {
		return false
	}
	return bytes.Equal(got, want)
}
