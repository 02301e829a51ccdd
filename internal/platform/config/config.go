package config

import (
	"os"
	"time"
)

// Config captures process-level configuration for both binaries.
type Config struct {
	// Addr is the HTTP listen address (service mode).
	Addr string
	// MetricsAddr serves the prometheus endpoint (service mode).
	MetricsAddr string
	// DataDir holds the CSV record store (console mode).
	DataDir string
	// DatabaseURL enables the postgres stores when set (service mode).
	DatabaseURL string
	// RedisURL enables the redis session store when set; falls back to memory.
	RedisURL string
	// JWTSigningKey signs service-mode access tokens.
	JWTSigningKey string
	// SessionTTL bounds how long a login session stays valid.
	SessionTTL time.Duration
}

// RedisConfig carries connection tuning for the redis client wrapper.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("BTOFLOW_ADDR", ":8080"),
		MetricsAddr:   envOr("BTOFLOW_METRICS_ADDR", ":9091"),
		DataDir:       envOr("BTOFLOW_DATA_DIR", "data"),
		DatabaseURL:   os.Getenv("BTOFLOW_DATABASE_URL"),
		RedisURL:      os.Getenv("BTOFLOW_REDIS_URL"),
		JWTSigningKey: os.Getenv("BTOFLOW_JWT_SIGNING_KEY"),
		SessionTTL:    30 * time.Minute,
	}
	if cfg.JWTSigningKey == "" {
		// Development default; override in any real deployment.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if raw := os.Getenv("BTOFLOW_SESSION_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.SessionTTL = ttl
		}
	}
	return cfg
}

// Redis derives the redis client settings from the base config.
func (c Config) Redis() RedisConfig {
	return RedisConfig{
		URL:          c.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
