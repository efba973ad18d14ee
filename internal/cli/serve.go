package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steamdex/steamdex/internal/logging"
	"github.com/steamdex/steamdex/internal/tracing"
	"github.com/steamdex/steamdex/internal/web"
)

// NewServeCmd creates the 'serve' command that runs the web UI and API.
func NewServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search web UI and JSON API",
		Example: `  steamdex serve
  steamdex serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
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

			server := web.NewServer(newEngine(store, cfg), store, handle.Conn())

			if port == "" {
				port = os.Getenv("STEAMDEX_PORT")
			}
			if port == "" {
				port = "8080"
			}

			logging.Info("serving", "addr", "http://localhost:"+port)

			srv := &http.Server{
				Addr:         ":" + port,
				Handler:      server,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default 8080, or STEAMDEX_PORT)")

	return cmd
}
