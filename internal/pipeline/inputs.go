package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go-atp-pipeline/internal/model"
)

// GatherInputs resolves the batch's input decks: explicit paths win, else the
// input directory is scanned for *.atp files in sorted order.
func GatherInputs(spec model.BatchSpec) ([]string, error) {
	if len(spec.Inputs) > 0 {
		for _, input := range spec.Inputs {
			if _, err := os.Stat(input); err != nil {
				return nil, fmt.Errorf("input deck %s: %w", input, err)
			}
		}
		return spec.Inputs, nil
	}

	if spec.InputDir == "" {
		return nil, fmt.Errorf("batch spec names neither inputs nor an inputDir")
	}
	matches, err := filepath.Glob(filepath.Join(spec.InputDir, "*.atp"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", spec.InputDir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .atp input decks found in %s", spec.InputDir)
	}
	sort.Strings(matches)
	fmt.Printf("➡️ Found %d input decks in %s\n", len(matches), spec.InputDir)
	return matches, nil
}
