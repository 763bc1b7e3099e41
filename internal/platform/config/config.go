package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// DefaultCurrency is the base currency budgets are kept in when the
	// request does not name one.
	DefaultCurrency string

	// Exchange rate provider settings
	RateBridgeCurrency string
	RateCacheTTL       time.Duration
	RateFetchTimeout   time.Duration

	// Rate limiting, requests per minute per client IP
	APIRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DEFAULT_CURRENCY", "RUB")
	viper.SetDefault("RATE_BRIDGE_CURRENCY", "USD")
	viper.SetDefault("RATE_CACHE_TTL", "1h")
	viper.SetDefault("RATE_FETCH_TIMEOUT", "5s")
	viper.SetDefault("API_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.DefaultCurrency = viper.GetString("DEFAULT_CURRENCY")
	cfg.RateBridgeCurrency = viper.GetString("RATE_BRIDGE_CURRENCY")
	cfg.APIRateLimit = viper.GetString("API_RATE_LIMIT")

	cacheTTLStr := viper.GetString("RATE_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = time.Hour
		log.Printf("Warning: Invalid value for RATE_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL)
	}
	cfg.RateCacheTTL = cacheTTL

	fetchTimeoutStr := viper.GetString("RATE_FETCH_TIMEOUT")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		fetchTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for RATE_FETCH_TIMEOUT ('%s'). Defaulting to %s.\n", fetchTimeoutStr, fetchTimeout)
	}
	cfg.RateFetchTimeout = fetchTimeout

	return cfg, nil
}
