package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-atp-pipeline/internal/config"
	"go-atp-pipeline/internal/pipeline"
	"go-atp-pipeline/internal/store"
)

func newRunCmd() *cobra.Command {
	var specPath string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one sweep batch from a YAML spec file",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := config.LoadFromFile(specPath)
			if err != nil {
				return err
			}
			if err := config.Validate(spec); err != nil {
				return fmt.Errorf("invalid spec: %w", err)
			}

			if dbPath != "" {
				if err := store.InitDB(dbPath); err != nil {
					return fmt.Errorf("open db: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			batchID := uuid.New().String()
			store.SaveBatch(batchID, spec)

			report, err := pipeline.Run(ctx, batchID, spec)
			if err != nil {
				return err
			}
			if report.Quarantined > 0 || report.ExportFails > 0 {
				return fmt.Errorf("batch finished with failures: %d quarantined, %d export failures",
					report.Quarantined, report.ExportFails)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&specPath, "spec", "s", "batch.yaml", "Path to the batch spec YAML file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Optional sqlite database for batch history")
	return cmd
}
