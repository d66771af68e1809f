package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "atp-pipeline",
		Short: "Batch runner and waveform extraction for ATP simulation sweeps",
		Long: `atp-pipeline drives an external circuit simulator over batches of input
decks, decodes the binary waveform files it produces, and exports them as
flat analysis-ready tables.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newExtractCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("atp-pipeline version %s\n", version)
		},
	}
}
