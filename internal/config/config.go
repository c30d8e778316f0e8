/**
 * @description
 * Configuration loader for the Belanja Backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 *
 * @notes
 * - Fails fast if DATABASE_URL is missing.
 * - OpenDOSM endpoints default to the public data.gov.my catalogue.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	OpenDOSM OpenDOSMConfig
	Services ServicesConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL string
}

// OpenDOSMConfig holds the PriceCatcher data source settings
type OpenDOSMConfig struct {
	BaseURL              string
	CatalogueEndpoint    string
	TransactionsID       string
	PremisesID           string
	ItemsID              string
	TimeoutSeconds       int
	MaxRetries           int
	RefreshIntervalHours int
	RetentionDays        int
}

// ServicesConfig holds external service keys (AI, admin auth, caching)
type ServicesConfig struct {
	GeminiAPIKey    string
	GeminiBaseURL   string
	GeminiModel     string
	AdminJWKSURL    string // URL to fetch JSON Web Key Set for admin JWT validation
	CacheTTLSeconds int
	EnableCaching   bool
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		OpenDOSM: OpenDOSMConfig{
			BaseURL:              getEnv("OPENDOSM_BASE_URL", "https://api.data.gov.my"),
			CatalogueEndpoint:    getEnv("OPENDOSM_CATALOGUE_ENDPOINT", "/data-catalogue"),
			TransactionsID:       getEnv("PRICECATCHER_TRANSACTIONS_ID", "pricecatcher"),
			PremisesID:           getEnv("PRICECATCHER_PREMISES_ID", "pricecatcher_premise"),
			ItemsID:              getEnv("PRICECATCHER_ITEMS_ID", "pricecatcher_item"),
			TimeoutSeconds:       getEnvAsInt("PRICECATCHER_API_TIMEOUT", 30),
			MaxRetries:           getEnvAsInt("PRICECATCHER_MAX_RETRIES", 3),
			RefreshIntervalHours: getEnvAsInt("PRICECATCHER_REFRESH_INTERVAL_HOURS", 24),
			RetentionDays:        getEnvAsInt("PRICECATCHER_RETENTION_DAYS", 7),
		},
		Services: ServicesConfig{
			GeminiAPIKey:    sanitizeCredential(getEnv("GEMINI_API_KEY", "")),
			GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			AdminJWKSURL:    getEnv("ADMIN_JWKS_URL", ""),
			CacheTTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 3600),
			EnableCaching:   getEnvAsBool("ENABLE_CACHING", true),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Services.AdminJWKSURL == "" && cfg.Server.Env != "test" {
		// Warning: strictly required for the admin refresh endpoints
		fmt.Println("Warning: ADMIN_JWKS_URL is missing. Admin routes will reject all requests.")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "\"")
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as bool
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
