package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Storage       StorageConfig `toml:"storage"`
	Sheets        SheetsConfig  `toml:"sheets"`
	Server        ServerConfig  `toml:"server"`
	Clock         ClockConfig   `toml:"clock"`
	Notifications NotifyConfig  `toml:"notifications"`
}

type StorageConfig struct {
	// Backend selects the storage adapter: "sqlite", "file", "memory" or "sheets".
	Backend string `toml:"backend"`
	// Path is the SQLite database file or the CSV data directory.
	// Empty means the default location under the config dir.
	Path string `toml:"path"`
}

type SheetsConfig struct {
	BaseURL         string `toml:"base_url"`
	Token           string `toml:"token"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type ClockConfig struct {
	// Timezone is the IANA zone actions are stamped in.
	Timezone string `toml:"timezone"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Sheets: SheetsConfig{
			CacheTTLMinutes: 10,
		},
		Server: ServerConfig{
			Addr: ":8787",
		},
		Clock: ClockConfig{
			Timezone: "Asia/Bangkok",
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "breaklog"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BREAKLOG_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("BREAKLOG_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("BREAKLOG_SHEETS_URL"); v != "" {
		cfg.Sheets.BaseURL = v
	}
	if v := os.Getenv("BREAKLOG_SHEETS_TOKEN"); v != "" {
		cfg.Sheets.Token = v
	}
	if v := os.Getenv("BREAKLOG_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BREAKLOG_TZ"); v != "" {
		cfg.Clock.Timezone = v
	}
}

// Location resolves the configured timezone, falling back to local time when
// the zone name does not load.
func (c *Config) Location() *time.Location {
	if c.Clock.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
