// Package config loads server settings from the environment.
//
// A .env file in the working directory is honored when present, so local
// development does not need exported variables. All settings have working
// defaults; a bare `minder serve` runs against ~/.minder and a local Ollama.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding MINDER_* variable is unset.
const (
	DefaultOllamaHost = "http://localhost:11434"
	DefaultEmbedModel = "nomic-embed-text"
	DefaultCacheTTL   = 5 * time.Minute
	DefaultCacheSize  = 256
)

// Config holds everything the server needs to start.
type Config struct {
	DataDir    string        // MINDER_DATA_DIR, default ~/.minder
	OllamaHost string        // MINDER_OLLAMA_HOST
	EmbedModel string        // MINDER_EMBED_MODEL
	CacheTTL   time.Duration // MINDER_CACHE_TTL, e.g. "5m"
	CacheSize  int           // MINDER_CACHE_SIZE
}

// Load reads configuration from .env and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		OllamaHost: envOrDefault("MINDER_OLLAMA_HOST", DefaultOllamaHost),
		EmbedModel: envOrDefault("MINDER_EMBED_MODEL", DefaultEmbedModel),
		CacheTTL:   DefaultCacheTTL,
		CacheSize:  DefaultCacheSize,
	}

	cfg.DataDir = os.Getenv("MINDER_DATA_DIR")
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".minder")
	}

	if v := os.Getenv("MINDER_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("config: invalid MINDER_CACHE_TTL %q", v)
		}
		cfg.CacheTTL = ttl
	}

	if v := os.Getenv("MINDER_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return Config{}, fmt.Errorf("config: invalid MINDER_CACHE_SIZE %q", v)
		}
		cfg.CacheSize = size
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
