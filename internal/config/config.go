package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DefaultPageSize int
	MaxPageSize     int
	ShutdownTimeout time.Duration
}

func Load() *Config {
	config := &Config{
		Addr:            getEnv("HTTP_ADDR", ":8080"),
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),
		ShutdownTimeout: 10 * time.Second,
	}

	if s := os.Getenv("SHUTDOWN_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			config.ShutdownTimeout = d
		}
	}

	return config
}

// LoadAndValidate loads the configuration and rejects unusable values.
func LoadAndValidate() (*Config, error) {
	config := Load()
	if config.Addr == "" {
		return nil, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if config.DefaultPageSize < 1 {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", config.DefaultPageSize)
	}
	if config.MaxPageSize < config.DefaultPageSize {
		return nil, fmt.Errorf("MAX_PAGE_SIZE (%d) must be >= DEFAULT_PAGE_SIZE (%d)",
			config.MaxPageSize, config.DefaultPageSize)
	}
	if config.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
