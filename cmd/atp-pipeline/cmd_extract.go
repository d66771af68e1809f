package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pipeline"
	"go-atp-pipeline/internal/pl4"
)

// extract decodes existing result files without running the simulator. Useful
// for re-exporting old sweeps with different crop or channel settings.
func newExtractCmd() *cobra.Command {
	var outDir string
	var format string
	var channels []string
	var samplesPerCycle int
	var lineFreq float64
	var removeSecs float64
	var edge string

	cmd := &cobra.Command{
		Use:   "extract <result.pl4> [more.pl4 ...]",
		Short: "Decode result files and export them as tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			em := pipeline.NewExportManager(model.ExportSpec{
				Mode:     "full",
				Format:   format,
				Dir:      outDir,
				Channels: channels,
			})

			failures := 0
			for _, path := range args {
				ds, err := pl4.Decode(path)
				if err != nil {
					fmt.Printf("❌ %s: %v\n", path, err)
					failures++
					continue
				}

				base := filepath.Base(path)
				stem := strings.TrimSuffix(base, filepath.Ext(base))
				dest := em.Destination(stem)

				var result model.ExportResult
				if len(channels) > 0 {
					series := make(map[string][]float32)
					for _, col := range pipeline.SelectColumns(ds, channels) {
						series[col.Name] = col.Values
					}
					timeVec := ds.Time
					if removeSecs > 0 {
						timeVec, series = pl4.CropColumns(timeVec, series,
							samplesPerCycle, lineFreq, removeSecs, pl4.Edge(edge))
					}
					cols := make([]pipeline.Column, 0, len(series))
					for _, col := range pipeline.SelectColumns(ds, channels) {
						cols = append(cols, pipeline.Column{Name: col.Name, Values: series[col.Name]})
					}
					result = em.ExportSelected(timeVec, cols, dest)
				} else {
					if removeSecs > 0 {
						ds = pl4.Crop(ds, samplesPerCycle, lineFreq, removeSecs, pl4.Edge(edge))
					}
					result = em.ExportDataset(ds, dest)
				}
				if !result.Success {
					failures++
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d files failed", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "Output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "parquet", "Export format: parquet, csv or json")
	cmd.Flags().StringSliceVarP(&channels, "channels", "c", nil, "Channel labels to export (default: all)")
	cmd.Flags().IntVar(&samplesPerCycle, "samples-per-cycle", 128, "Samples per power cycle, for cropping")
	cmd.Flags().Float64Var(&lineFreq, "line-freq", 60, "Line frequency in Hz, for cropping")
	cmd.Flags().Float64Var(&removeSecs, "remove-seconds", 0, "Seconds of samples to crop (0 = no crop)")
	cmd.Flags().StringVar(&edge, "edge", "start", "Crop edge: start or end")
	return cmd
}
