package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Hard operational bounds. The quote feed caps ranked requests at 500
// assets, and refreshing more often than once a minute burns the external
// quota without the feed publishing fresher data.
const (
	MaxCoinLimit       = 500
	MinRefreshInterval = time.Minute
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Market    MarketConfig
	CORS      CORSConfig
	FernetKey string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// MarketConfig holds the market-data feed settings: where the quote feed
// lives, how many ranked assets to request, and how often a refresh may go
// out.
type MarketConfig struct {
	BaseURL         string
	APIKey          string
	CoinLimit       int
	RefreshInterval time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio.db"),
		},
		Market: MarketConfig{
			BaseURL:         getEnv("QUOTE_FEED_URL", "https://api.coingecko.com/api/v3"),
			APIKey:          getEnv("MARKET_API_KEY", ""),
			CoinLimit:       getEnvInt("COIN_LIMIT", 250),
			RefreshInterval: getEnvDuration("QUOTE_REFRESH_INTERVAL", 5*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		FernetKey: getEnv("FERNET_KEY", ""),
	}

	if config.Market.CoinLimit <= 0 {
		return nil, fmt.Errorf("COIN_LIMIT must be positive, got %d", config.Market.CoinLimit)
	}
	if config.Market.CoinLimit > MaxCoinLimit {
		config.Market.CoinLimit = MaxCoinLimit
	}
	if config.Market.RefreshInterval < MinRefreshInterval {
		config.Market.RefreshInterval = MinRefreshInterval
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value.
// Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration gets a duration environment variable ("5m", "90s") or
// returns a default value. Unparseable values fall back to the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
