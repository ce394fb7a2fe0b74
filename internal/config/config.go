package config

import (
	"os"
	"time"
)

type Config struct {
	Addr       string
	DBPath     string
	CatalogURL string

	// FlushInterval borne la fréquence des écritures de progression
	// (au plus un upsert distant par intervalle pendant la lecture).
	FlushInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:          envOr("PODKAST_ADDR", "127.0.0.1:8080"),
		DBPath:        envOr("PODKAST_DB_PATH", "podkast.db"),
		CatalogURL:    envOr("PODKAST_CATALOG_URL", "https://podcast-api.netlify.app"),
		FlushInterval: envDurationOr("PODKAST_FLUSH_INTERVAL", 10*time.Second),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
