package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pl4"
)

// Extracted couples one decoded (and optionally cropped) dataset with the
// stem of the input that produced it.
type Extracted struct {
	Stem    string
	Dataset *pl4.Dataset
}

// ExtractDatasets decodes result files from in, applies the optional crop,
// and forwards datasets on out. Corrupt or unreadable files are reported on
// errs and skipped; the stage keeps processing the remaining files.
func ExtractDatasets(
	ctx context.Context,
	crop *model.CropSpec,
	in <-chan string,
	out chan<- Extracted,
	errs chan<- error,
	workerCount int,
) {
	var wg sync.WaitGroup
	wg.Add(workerCount)

	var decodedCount, failedCount int64
	var mu sync.Mutex

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			defer wg.Done()
			workerDecoded := 0
			workerFailed := 0

			for path := range in {
				select {
				case <-ctx.Done():
					return
				default:
					ds, err := pl4.Decode(path)
					if err != nil {
						workerFailed++
						if errors.Is(err, pl4.ErrCorruptHeader) {
							errs <- fmt.Errorf("corrupt result file skipped: %w", err)
						} else {
							errs <- fmt.Errorf("read result file: %w", err)
						}
						continue
					}

					if crop != nil {
						ds = pl4.Crop(ds, crop.SamplesPerCycle, crop.LineFrequencyHz,
							crop.SecondsToRemove, pl4.Edge(crop.Edge))
					}

					base := filepath.Base(path)
					stem := strings.TrimSuffix(base, filepath.Ext(base))
					select {
					case <-ctx.Done():
						return
					case out <- Extracted{Stem: stem, Dataset: ds}:
						workerDecoded++
						fmt.Printf("🔍 Extract Worker %d: %s → %d channels, %d samples\n",
							workerID, base, len(ds.Channels), ds.Records)
					}
				}
			}

			mu.Lock()
			decodedCount += int64(workerDecoded)
			failedCount += int64(workerFailed)
			mu.Unlock()
		}(i)
	}

	// Close the output channel only AFTER all workers finish.
	go func() {
		wg.Wait()
		mu.Lock()
		fmt.Printf("🔍 Extract Summary: %d decoded, %d failed\n", decodedCount, failedCount)
		mu.Unlock()
		close(out)
	}()
}

// SelectColumns picks the channels named in the export spec, preserving the
// file's channel order. With no explicit channel set every channel is
// selected.
func SelectColumns(ds *pl4.Dataset, channels []string) []Column {
	labels := ds.Labels()
	if len(channels) == 0 {
		cols := make([]Column, len(labels))
		for i, label := range labels {
			cols[i] = Column{Name: label, Values: ds.Data[i]}
		}
		return cols
	}

	wanted := make(map[string]bool, len(channels))
	for _, name := range channels {
		wanted[name] = true
	}
	var cols []Column
	for i, label := range labels {
		if wanted[label] {
			cols = append(cols, Column{Name: label, Values: ds.Data[i]})
		}
	}
	return cols
}
