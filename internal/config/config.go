package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Analytics AnalyticsConfig
	Provider  ProviderConfig
	Scheduler SchedulerConfig
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

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AnalyticsConfig holds the overridable analytics tunables. The defaults
// match the historical dashboard behavior; deployments adjust them via
// environment variables rather than code changes.
type AnalyticsConfig struct {
	RiskFreeRatePercent float64 // Sharpe numerator baseline, percent
	TradingDaysPerYear  int     // Annualization factor for daily returns
	StalePriceHours     int     // Reconciler staleness window
	DefaultDaysBack     int     // Snapshot range when the request omits one
}

// ProviderConfig holds market-data provider configuration. The API token is
// stored fernet-encrypted in the database; FernetKey is the base64 key used
// to decrypt it.
type ProviderConfig struct {
	FernetKey string
}

// SchedulerConfig holds the snapshot capture schedule.
type SchedulerConfig struct {
	SnapshotCron string // Cron expression; empty disables scheduled capture
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
			Path: getEnv("DB_PATH", "./data/portfolio_analytics.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Analytics: AnalyticsConfig{
			RiskFreeRatePercent: getEnvFloat("RISK_FREE_RATE_PERCENT", 2.0),
			TradingDaysPerYear:  getEnvInt("TRADING_DAYS_PER_YEAR", 252),
			StalePriceHours:     getEnvInt("STALE_PRICE_HOURS", 48),
			DefaultDaysBack:     getEnvInt("DEFAULT_DAYS_BACK", 30),
		},
		Provider: ProviderConfig{
			FernetKey: getEnv("PROVIDER_FERNET_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			SnapshotCron: getEnv("SNAPSHOT_CRON", "30 22 * * *"),
		},
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
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloat gets a float environment variable or returns a default value.
// Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
