// Package config loads harness settings from the environment and optional
// YAML suite files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the harness
type Config struct {
	Scenarios      []string
	Timeout        time.Duration
	Parallelism    int
	MemPages       int
	CacheSize      int
	LogLevel       string
	LogFormat      string
	MetricsAddr    string
	JaegerEndpoint string
}

// maxMemPages is the wasm limit of 64KiB pages in a 32-bit memory.
const maxMemPages = 65536

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Scenarios:      parseCommaSeparated(getEnv("ABICHECK_SCENARIOS", "")),
		Timeout:        getEnvDuration("ABICHECK_TIMEOUT", "30s"),
		Parallelism:    getEnvInt("ABICHECK_PARALLELISM", 1),
		MemPages:       clampMemPages(getEnvInt("ABICHECK_MEM_PAGES", 64)),
		CacheSize:      getEnvInt("ABICHECK_CACHE_SIZE", 16),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		MetricsAddr:    getEnv("ABICHECK_METRICS_ADDR", ""),
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
	}
}

// clampMemPages rejects out-of-range page counts in favor of the default
func clampMemPages(pages int) int {
	if pages < 1 || pages > maxMemPages {
		return 64
	}
	return pages
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
