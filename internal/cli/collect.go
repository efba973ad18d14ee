package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamdex/steamdex/internal/ingest"
	"github.com/steamdex/steamdex/internal/steam"
	"github.com/steamdex/steamdex/internal/tracing"
)

// NewCollectCmd creates the 'collect' command that refreshes the catalog
// from the storefront.
func NewCollectCmd() *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Crawl the storefront and refresh the game catalog",
		Long: `Discover top seller app ids from the storefront search listing,
then fetch metadata and per-region prices for each one into the local
database.`,
		Example: `  steamdex collect
  steamdex collect --max-pages 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if maxPages > 0 {
				cfg.Steam.MaxPages = maxPages
			}

			ctx := cmd.Context()
			shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
			if err != nil {
				return fmt.Errorf("setup tracing: %w", err)
			}
			defer func() { _ = shutdown(ctx) }()

			handle, store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = handle.Close() }()

			client := steam.NewClient(cfg.Steam.DetailURL, cfg.Steam.SearchURL)
			collector := ingest.NewCollector(store, client, cfg)
			return collector.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Limit the number of listing pages to crawl")

	return cmd
}
