package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steamdex/steamdex/internal/catalog"
)

// NewSearchCmd creates the 'search' command for querying the catalog from
// the terminal.
func NewSearchCmd() *cobra.Command {
	var (
		tags       string
		minPrice   int
		maxPrice   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search the catalog by name, tags and price range",
		Long: `Search the local catalog. Prices are shown in the reference currency;
converted prices carry the native amount alongside. Tags are comma
separated and matched as OR.`,
		Example: `  steamdex search portal
  steamdex search --tags "Action, RPG" --max-price 500
  steamdex search --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			handle, store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = handle.Close() }()

			params := catalog.Params{Tags: tags, MinPrice: minPrice}
			if len(args) > 0 {
				params.Name = args[0]
			}
			params.MaxPrice, err = catalog.ParsePriceBound(maxPrice)
			if err != nil {
				return err
			}

			results, err := newEngine(store, cfg).Search(ctx, params)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				fmt.Println("No games matched.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "APPID\tTITLE\tPRICE\tREGION")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.AppID, r.Title, r.Price, r.Region)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma separated tag filter (matched as OR)")
	cmd.Flags().IntVar(&minPrice, "min-price", 0, "Minimum price in the reference currency")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "Maximum price in the reference currency")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
