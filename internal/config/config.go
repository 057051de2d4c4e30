// Package config loads the engine's runtime configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all engine configuration. The upstream URL is the only value
// a deployment must supply; everything else has workable defaults.
type Config struct {
	UpstreamURL string
	ListenAddr  string

	// AdminKey guards destructive endpoints. Empty disables the guard.
	AdminKey string

	RefreshInterval  time.Duration
	TickInterval     time.Duration
	ScanPollInterval time.Duration
}

// Load reads the .env file (if present) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Config: no .env file found, using system env vars")
	}

	return &Config{
		UpstreamURL: getEnv("UPSTREAM_URL", "http://localhost:3001"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8090"),
		AdminKey:    os.Getenv("ADMIN_KEY"),

		RefreshInterval:  getEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		TickInterval:     getEnvDuration("TICK_INTERVAL", time.Second),
		ScanPollInterval: getEnvDuration("SCAN_POLL_INTERVAL", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Config: invalid duration %q for %s, using %v", value, key, fallback)
		return fallback
	}
	return d
}
