package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go-atp-pipeline/internal/api"
	"go-atp-pipeline/internal/store"
)

func newServeCmd() *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real env vars win either way.
			godotenv.Load()

			if v := os.Getenv("ATP_DB_PATH"); v != "" {
				dbPath = v
			}
			if v := os.Getenv("ATP_LISTEN_ADDR"); v != "" {
				addr = v
			}

			if err := store.InitDB(dbPath); err != nil {
				return fmt.Errorf("open db: %w", err)
			}

			fmt.Printf("🌐 Serving batch API on %s\n", addr)
			return http.ListenAndServe(addr, api.NewRouter())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "pipeline.db", "Sqlite database path")
	return cmd
}
