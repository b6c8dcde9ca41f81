package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the explicit configuration object handed to the
// pipeline at construction. Nothing here is ambient.
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Storage StorageConfig `toml:"storage"`
	Ingest  IngestConfig  `toml:"ingest"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type DataConfig struct {
	DatabasePath string `toml:"database_path"`
}

type StorageConfig struct {
	// Root of the local object tree (root/bucket/object). The real
	// bucket download is the trigger collaborator's concern.
	Root string `toml:"root"`
}

type IngestConfig struct {
	// MasterSheet is the slugged name of the preferred master sheet;
	// the first sheet is the fallback.
	MasterSheet string `toml:"master_sheet"`
	// StagingMaxAgeMinutes bounds how long a stale staging table may
	// survive before the sweep drops it.
	StagingMaxAgeMinutes int `toml:"staging_max_age_minutes"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server:  ServerConfig{Port: 8080},
		Data:    DataConfig{DatabasePath: "data/tmabrasil.db"},
		Storage: StorageConfig{Root: "data/buckets"},
		Ingest: IngestConfig{
			MasterSheet:          "relacao_de_informacoes",
			StagingMaxAgeMinutes: 60,
		},
	}
}

// StagingMaxAge is the configured staging expiry as a duration.
func (c *AppConfig) StagingMaxAge() time.Duration {
	return time.Duration(c.Ingest.StagingMaxAgeMinutes) * time.Minute
}

// Load builds the config: defaults, then the TOML file if present,
// then .env / environment overrides.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// .env is optional, useful for local runs
	_ = godotenv.Load()

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Data.DatabasePath = v
	}
	if v := os.Getenv("STORAGE_ROOT"); v != "" {
		cfg.Storage.Root = v
	}
	if v := os.Getenv("MASTER_SHEET"); v != "" {
		cfg.Ingest.MasterSheet = v
	}

	return cfg, nil
}
