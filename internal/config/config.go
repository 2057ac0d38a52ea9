// Package config loads application configuration from environment
// variables, validated at startup for fail-fast behavior.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddr  string
	MetricsAddr string
	LogLevel    string

	// External service endpoints. ValidateURL may be empty, which
	// disables the validation correction step.
	PredictURL  string
	ValidateURL string

	// Per-call ceiling for outbound prediction/validation requests.
	MLTimeout time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:  getEnvOrDefault("SERVER_ADDR", ":3000"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		PredictURL:  getEnvOrDefault("PREDICT_URL", "http://localhost:5001/predict"),
		ValidateURL: os.Getenv("VALIDATE_URL"),
	}

	timeoutStr := getEnvOrDefault("ML_TIMEOUT", "5s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ML_TIMEOUT %q: %w", timeoutStr, err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("ML_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.MLTimeout = timeout

	if cfg.PredictURL == "" {
		return nil, fmt.Errorf("PREDICT_URL is required")
	}

	return cfg, nil
}

// MustLoad loads configuration and exits the process on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
