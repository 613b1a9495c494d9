package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/edubridge/consultancy-admin/internal/utils"
)

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	Casdoor CasdoorConfig

	// KafkaBrokers is empty when events stay in-process
	KafkaBrokers string

	CommissionBatchCron     string
	CommissionBatchDisabled bool
	PermissionCacheTTL      time.Duration

	// FunctionAPIKey guards the commission function when set
	FunctionAPIKey string
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// LoadConfig reads .env when present, then the process environment
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    utils.ParseLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: getEnv("CASDOOR_ORGANIZATION", "built-in"),
			Application:  getEnv("CASDOOR_APPLICATION", "consultancy-admin"),
		},
		KafkaBrokers:            os.Getenv("KAFKA_BROKERS"),
		CommissionBatchCron:     getEnv("COMMISSION_BATCH_CRON", "0 2 * * *"),
		CommissionBatchDisabled: getEnvBool("COMMISSION_BATCH_DISABLED", false),
		PermissionCacheTTL:      getEnvDuration("PERMISSION_CACHE_TTL", 5*time.Minute),
		FunctionAPIKey:          os.Getenv("FUNCTION_API_KEY"),
	}

	// Certificates in env files usually carry escaped newlines
	cfg.Casdoor.Cert = strings.ReplaceAll(cfg.Casdoor.Cert, `\n`, "\n")

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
