// Package config loads the orchestrator's process configuration. Most
// knobs are environment variables (the deployment surface is a single
// process per §6 of the spec); an optional YAML file layered underneath
// lets an operator check in non-secret defaults the way the rest of the
// example stack does with viper.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the orchestrator's full runtime configuration.
type Config struct {
	Port int `mapstructure:"port"`

	VectorDB VectorDBConfig `mapstructure:"vector_db"`
	KVStore  KVStoreConfig  `mapstructure:"kv_store"`
	Embed    EmbedConfig    `mapstructure:"embed"`

	// EmbeddingDim is fixed by the spec (D=512, cosine) but kept
	// configurable for tests that use smaller synthetic vectors.
	EmbeddingDim int `mapstructure:"embedding_dim"`
}

type VectorDBConfig struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	CollectionName string `mapstructure:"collection_name"`
}

type KVStoreConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
}

type EmbedConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

const defaultCollectionName = "frontdesk_chunks"

// Load reads CONFIG_PATH (if set) for non-secret defaults, then applies
// environment variable overrides, which always win. An unset CONFIG_PATH
// is not an error -- env vars alone are a valid configuration -- but a
// CONFIG_PATH that cannot be read is.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 3002)
	v.SetDefault("vector_db.collection_name", defaultCollectionName)
	v.SetDefault("embedding_dim", 512)
	v.SetDefault("embed.timeout", 5*time.Second)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.VectorDB.CollectionName == "" {
		cfg.VectorDB.CollectionName = defaultCollectionName
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = 512
	}
	if cfg.Embed.Timeout == 0 {
		cfg.Embed.Timeout = 5 * time.Second
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if p := os.Getenv("PORT"); p != "" {
		var port int
		if _, err := fmt.Sscanf(p, "%d", &port); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("VECTOR_DB_URL"); v != "" {
		cfg.VectorDB.URL = v
	}
	if v := os.Getenv("VECTOR_DB_API_KEY"); v != "" {
		cfg.VectorDB.APIKey = v
	}
	if v := os.Getenv("KV_STORE_URL"); v != "" {
		cfg.KVStore.URL = v
	}
	if v := os.Getenv("KV_STORE_PASSWORD"); v != "" {
		cfg.KVStore.Password = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embed.APIKey = v
	}
}
