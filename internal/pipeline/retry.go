package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/store"
)

// RetryBatch re-runs a batch over the decks sitting in its quarantine
// directory. The retried decks go through the full pipeline again; decks that
// fail again land back in quarantine.
func RetryBatch(ctx context.Context, batchID string, spec model.BatchSpec) (*model.BatchReport, error) {
	quarantine := spec.Runner.QuarantineDir
	if quarantine == "" {
		quarantine = "quarantine"
	}

	entries, err := os.ReadDir(quarantine)
	if err != nil {
		return nil, fmt.Errorf("read quarantine dir %s: %w", quarantine, err)
	}
	var decks []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".atp") {
			continue
		}
		decks = append(decks, filepath.Join(quarantine, entry.Name()))
	}
	if len(decks) == 0 {
		return nil, fmt.Errorf("no quarantined decks to retry in %s", quarantine)
	}
	sort.Strings(decks)

	fmt.Printf("🔄 Retrying batch %s: %d quarantined decks\n", batchID, len(decks))
	store.UpdateBatchStatus(batchID, "retrying")

	retrySpec := spec
	retrySpec.Inputs = decks
	retrySpec.InputDir = ""
	return Run(ctx, batchID, retrySpec)
}
