// Package config loads storefront settings from the environment. A .env file in
// the working directory, when present, is loaded first without overriding
// variables that are already set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	PostgresURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	PublicDir      string
	MaxUploadBytes int64
	KafkaBrokers   []string
	OrderTopic     string
}

// Load reads the API configuration. POSTGRES_URL and JWT_SECRET are required.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Port:        get("PORT", "8080"),
		PostgresURL: get("POSTGRES_URL", ""),
		JWTSecret:   get("JWT_SECRET", ""),
		PublicDir:   get("PUBLIC_DIR", "./public"),
		OrderTopic:  get("ORDER_EVENTS_TOPIC", "order.placed"),
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration")
	}
	cfg.TokenTTL = ttl

	maxUpload, err := strconv.ParseInt(get("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer")
	}
	cfg.MaxUploadBytes = maxUpload

	if brokers := get("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}
