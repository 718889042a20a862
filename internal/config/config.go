// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the profiles database, always absolute
	Port            int
	LogLevel        string
	DevMode         bool
	BenchmarkSymbol string  // Benchmark series for alpha, beta and correlation
	RiskFreeRatePct float64 // Annual risk-free rate in percent
	Simulations     int     // Monte Carlo sample size
}

// Load reads configuration from environment variables, with an optional
// .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("ANALYTICS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("ANALYTICS_PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "SPY"),
		RiskFreeRatePct: getEnvAsFloat("RISK_FREE_RATE", 2.0),
		Simulations:     getEnvAsInt("MONTE_CARLO_SIMULATIONS", 1000),
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Simulations < 1 {
		return nil, fmt.Errorf("invalid Monte Carlo sample size: %d", cfg.Simulations)
	}

	return cfg, nil
}

// DatabasePath returns the profiles database location inside the data dir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "profiles.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
