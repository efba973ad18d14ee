package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewDumpCmd creates the 'dump' command that prints a snapshot of the
// database contents for inspection.
func NewDumpCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print table counts and sample rows from the database",
		Example: `  steamdex dump
  steamdex dump --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			handle, _, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = handle.Close() }()
			conn := handle.Conn()

			for _, table := range []string{"regions", "games", "tags", "game_tags", "price_records", "developers", "publishers"} {
				var count int
				if err := conn.QueryRowContext(ctx,
					fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
					return fmt.Errorf("count %s: %w", table, err)
				}
				fmt.Printf("%s: %d rows\n", table, count)
			}
			fmt.Println()

			if err := dumpGames(ctx, conn, limit); err != nil {
				return err
			}
			return dumpPrices(ctx, conn, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of sample rows to print per table")

	return cmd
}

func dumpGames(ctx context.Context, conn *sql.DB, limit int) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT id, title, COALESCE(edition, ''), is_free
		FROM games ORDER BY id LIMIT ?
	`, limit)
	if err != nil {
		return fmt.Errorf("dump games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tEDITION\tFREE")
	for rows.Next() {
		var id int64
		var title, edition string
		var free int
		if err := rows.Scan(&id, &title, &edition, &free); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", id, title, edition, free == 1)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func dumpPrices(ctx context.Context, conn *sql.DB, limit int) error {
	rows, err := conn.QueryContext(ctx, `
		SELECT game_id, region_code, COALESCE(final_price, -1), recorded_at
		FROM price_records ORDER BY id LIMIT ?
	`, limit)
	if err != nil {
		return fmt.Errorf("dump prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tREGION\tFINAL\tRECORDED")
	for rows.Next() {
		var gameID int64
		var region, recordedAt string
		var final float64
		if err := rows.Scan(&gameID, &region, &final, &recordedAt); err != nil {
			return err
		}
		price := fmt.Sprintf("%.2f", final)
		if final < 0 {
			price = "null"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", gameID, region, price, recordedAt)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return w.Flush()
}
