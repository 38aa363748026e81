package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/me/trailctl/internal/server"
	"github.com/me/trailctl/internal/store"
)

func newServeCmd() *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local API server",
		Long:  "Run the Audit Trail & Task Management API server backed by SQLite. Intended for development and self-hosting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(dbPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate store: %w", err)
			}

			srv := server.New(st, logger)
			logger.Info("server listening", "addr", addr, "db", dbPath)
			if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "trailctl.db", "SQLite database path")
	return cmd
}
