// Package config loads batch specs for the CLI from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"go-atp-pipeline/internal/model"
)

// Default returns a BatchSpec with sensible defaults. Callers still need to
// fill in the executable and the input source.
func Default() model.BatchSpec {
	return model.BatchSpec{
		Runner: model.RunnerSpec{
			OutputSuffix:   ".pl4",
			ProcessName:    "tpbig",
			ScratchDir:     "tmp-runs",
			OutputDir:      "results",
			QuarantineDir:  "quarantine",
			AppearTimeout:  "30s",
			StableInterval: "500ms",
			StableSamples:  5,
		},
		Export: model.ExportSpec{
			Mode:   "full",
			Format: "parquet",
			Dir:    "exports",
		},
		Concurrency: model.ConcurrencySpec{
			SimulatorLimit:    2,
			Workers:           model.Workers{Extract: 3, Export: 2},
			ChannelBufferSize: 16,
			BatchTimeout:      "30m",
		},
	}
}

// LoadFromFile loads a batch spec from a YAML file, layered over Default.
func LoadFromFile(path string) (model.BatchSpec, error) {
	spec := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("reading spec file: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parsing spec file: %w", err)
	}
	applyEnvOverrides(&spec)
	return spec, nil
}

// Validate checks that the spec is runnable.
func Validate(spec model.BatchSpec) error {
	if spec.Runner.Executable == "" {
		return fmt.Errorf("runner.executable is required")
	}
	if len(spec.Inputs) == 0 && spec.InputDir == "" {
		return fmt.Errorf("either inputs or inputDir is required")
	}
	if spec.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}

	validModes := map[string]bool{"": true, "full": true, "selected": true}
	if !validModes[strings.ToLower(spec.Export.Mode)] {
		return fmt.Errorf("invalid export mode: %s (valid: full, selected)", spec.Export.Mode)
	}
	if strings.EqualFold(spec.Export.Mode, "selected") && len(spec.Export.Channels) == 0 {
		return fmt.Errorf("selected export mode requires at least one channel")
	}

	validFormats := map[string]bool{"": true, "parquet": true, "csv": true, "json": true}
	if !validFormats[strings.ToLower(spec.Export.Format)] {
		return fmt.Errorf("invalid export format: %s (valid: parquet, csv, json)", spec.Export.Format)
	}

	if spec.Crop != nil {
		if spec.Crop.Edge != "start" && spec.Crop.Edge != "end" {
			return fmt.Errorf("invalid crop edge: %s (valid: start, end)", spec.Crop.Edge)
		}
		if spec.Crop.SecondsToRemove < 0 {
			return fmt.Errorf("crop.secondsToRemove must be non-negative, got %f", spec.Crop.SecondsToRemove)
		}
	}
	if spec.Concurrency.SimulatorLimit < 0 {
		return fmt.Errorf("concurrency.simulatorLimit must be non-negative, got %d", spec.Concurrency.SimulatorLimit)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the spec.
func applyEnvOverrides(spec *model.BatchSpec) {
	if v := os.Getenv("ATP_EXECUTABLE"); v != "" {
		spec.Runner.Executable = v
	}
	if v := os.Getenv("ATP_PROCESS_NAME"); v != "" {
		spec.Runner.ProcessName = v
	}
	if v := os.Getenv("ATP_OUTPUT_DIR"); v != "" {
		spec.Runner.OutputDir = v
	}
	if v := os.Getenv("ATP_EXPORT_DIR"); v != "" {
		spec.Export.Dir = v
	}
	if v := os.Getenv("ATP_EXPORT_FORMAT"); v != "" {
		spec.Export.Format = v
	}
	if v := os.Getenv("ATP_SIMULATOR_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			spec.Concurrency.SimulatorLimit = n
		}
	}
	if v := os.Getenv("ATP_BATCH_TIMEOUT"); v != "" {
		spec.Concurrency.BatchTimeout = v
	}
}
