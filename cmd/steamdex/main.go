/*
Package main is the entry point for the steamdex CLI.

steamdex maintains a local catalog of storefront games with per-region
prices and serves a search UI over it.

Usage:
  steamdex [command]

Available Commands:
  collect     Crawl the storefront and refresh the game catalog
  serve       Run the search web UI and JSON API
  search      Search the catalog by name, tags and price range
  dump        Print table counts and sample rows from the database
  help        Help about any command

Examples:
  # Refresh the catalog from the storefront
  steamdex collect

  # Run the web UI on port 8080
  steamdex serve

  # Query from the terminal
  steamdex search portal --max-price 500
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steamdex/steamdex/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "steamdex",
		Short: "Local game catalog with cross-region price search",
		Long: `steamdex crawls the storefront's top sellers, records each game's
price in every configured region, and answers searches with the cheapest
region's price normalized into one reference currency.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewCollectCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewDumpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
