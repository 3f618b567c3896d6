// Package storage picks and constructs the configured storage backend.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/worawit/breaklog/internal/config"
	"github.com/worawit/breaklog/internal/ledger"
	"github.com/worawit/breaklog/internal/storage/file"
	"github.com/worawit/breaklog/internal/storage/memory"
	"github.com/worawit/breaklog/internal/storage/sheets"
	"github.com/worawit/breaklog/internal/storage/sqlite"
)

// Open builds the backend named by cfg.Storage.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (ledger.Storage, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		path := cfg.Storage.Path
		if path == "" {
			dir, err := config.ConfigDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "breaklog.db")
		}
		return sqlite.Open(path)

	case "file":
		dir := cfg.Storage.Path
		if dir == "" {
			base, err := config.ConfigDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "logs")
		}
		return file.Open(dir)

	case "memory":
		return memory.NewStore(), nil

	case "sheets":
		if cfg.Sheets.BaseURL == "" {
			return nil, fmt.Errorf("sheets backend selected but sheets.base_url is not configured")
		}
		ttl := time.Duration(cfg.Sheets.CacheTTLMinutes) * time.Minute
		return sheets.NewStore(cfg.Sheets.BaseURL, cfg.Sheets.Token, ttl, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
