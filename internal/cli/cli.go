// Package cli implements the steamdex subcommands.
package cli

import (
	"context"

	"github.com/steamdex/steamdex/internal/catalog"
	"github.com/steamdex/steamdex/internal/config"
	"github.com/steamdex/steamdex/internal/db"
	"github.com/steamdex/steamdex/internal/logging"
)

// loadConfig loads configuration and applies it to the logger. A missing
// or broken config file falls back to defaults.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logging.Warn("failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}
	logging.Setup(cfg.Logging)
	return cfg
}

// openStore opens the database and wraps it in a catalog store.
func openStore(ctx context.Context, cfg *config.Config) (*db.DB, *db.Store, error) {
	handle, err := db.Open(ctx, cfg.GetDBPath())
	if err != nil {
		return nil, nil, err
	}
	return handle, db.NewStore(handle), nil
}

// newEngine builds the search engine over the configured region and
// exchange rate tables.
func newEngine(store *db.Store, cfg *config.Config) *catalog.Engine {
	norm := catalog.NewNormalizer(
		cfg.GetReferenceCurrency(),
		cfg.RegionCurrencies(),
		cfg.RegionNames(),
		cfg.Rates,
	)
	return catalog.NewEngine(store, norm)
}
