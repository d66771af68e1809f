// Package pipeline orchestrates one sweep batch end to end: run the external
// simulator over every input deck, decode the binary waveform results, apply
// the optional sample window, and export one flat table per input.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/runner"
	"go-atp-pipeline/internal/store"
	"go-atp-pipeline/pkg/utils"
)

// ------------------- Batch Runner -------------------

// Run executes one batch. Per-job and per-file failures are isolated and
// reported; the batch itself only fails on spec-level problems (no inputs,
// cancelled context).
func Run(ctx context.Context, batchID string, spec model.BatchSpec) (report *model.BatchReport, err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting batch: %s\n", batchID)

	store.UpdateBatchStatus(batchID, "running")
	defer func() {
		if err != nil {
			store.UpdateBatchStatus(batchID, "failed")
			store.SaveBatchError(batchID, err)
		}
	}()

	timeout := utils.ParseDuration(spec.Concurrency.BatchTimeout, 30*time.Minute)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	inputs, err := GatherInputs(spec)
	if err != nil {
		return nil, err
	}
	if spec.Logging {
		for _, input := range inputs {
			fmt.Printf("  • queued %s\n", input)
		}
	}

	tracker := NewBatchTracker(batchID, len(inputs))
	bufferSize := spec.Concurrency.ChannelBufferSize
	if bufferSize == 0 {
		bufferSize = 16
	}

	filesCh := make(chan string, bufferSize)
	extractedCh := make(chan Extracted, bufferSize)
	errorCh := make(chan error, bufferSize)

	var wg sync.WaitGroup

	// --- ERROR LOGGER ---
	// Not part of wg: it drains until errorCh closes, which happens only
	// after every stage has finished.
	loggerDone := make(chan struct{})
	go func() {
		defer close(loggerDone)
		for err := range errorCh {
			log.Printf("❌ Error in batch %s: %v\n", batchID, err)
			tracker.RecordError("extract", "", err.Error())
		}
	}()

	// --- SIMULATION STAGE ---
	var runReport runner.Report
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.UpdateBatchStatus(batchID, "running-simulations")
		tracker.StartStage("runner", spec.Concurrency.SimulatorLimit)

		runReport = buildRunner(spec).RunAll(ctx, inputs)

		for _, job := range runReport.Quarantined {
			store.SaveJobOutcome(batchID, job)
			tracker.RecordError("runner", job.Input, job.Error)
		}
		for _, job := range runReport.Succeeded {
			store.SaveJobOutcome(batchID, job)
			select {
			case <-ctx.Done():
			case filesCh <- job.Artifact:
			}
		}
		close(filesCh) // safe: only this goroutine closes filesCh

		tracker.EndStage("runner", int64(len(runReport.Succeeded)))
	}()

	// --- EXTRACTION STAGE ---
	extractWorkers := spec.Concurrency.Workers.Extract
	if extractWorkers == 0 {
		extractWorkers = 3 // default
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.UpdateBatchStatus(batchID, "extracting")
		tracker.StartStage("extract", extractWorkers)
		ExtractDatasets(ctx, spec.Crop, filesCh, extractedCh, errorCh, extractWorkers)
	}()

	// --- EXPORT STAGE ---
	exportManager := NewExportManager(spec.Export)
	exportWorkers := spec.Concurrency.Workers.Export
	if exportWorkers == 0 {
		exportWorkers = 2 // default
	}
	var decoded, exported, exportFails int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.UpdateBatchStatus(batchID, "exporting")
		tracker.StartStage("export", exportWorkers)

		var ewg sync.WaitGroup
		var mu sync.Mutex
		selected := strings.EqualFold(spec.Export.Mode, "selected")

		ewg.Add(exportWorkers)
		for i := 0; i < exportWorkers; i++ {
			go func() {
				defer ewg.Done()
				for ex := range extractedCh {
					var result model.ExportResult
					dest := exportManager.Destination(ex.Stem)
					if selected {
						cols := SelectColumns(ex.Dataset, spec.Export.Channels)
						result = exportManager.ExportSelected(ex.Dataset.Time, cols, dest)
					} else {
						result = exportManager.ExportDataset(ex.Dataset, dest)
					}
					store.SaveExportResult(batchID, result)

					mu.Lock()
					decoded++
					if result.Success {
						exported++
					} else {
						exportFails++
						tracker.RecordError("export", ex.Stem, result.Error)
					}
					mu.Unlock()
				}
			}()
		}
		ewg.Wait()

		tracker.EndStage("extract", decoded)
		tracker.EndStage("export", exported)
	}()

	// Wait for all stages to finish, then close errorCh at the very end.
	wg.Wait()
	close(errorCh)
	<-loggerDone

	report = &model.BatchReport{
		BatchID:     batchID,
		Total:       len(inputs),
		Succeeded:   len(runReport.Succeeded),
		Quarantined: len(runReport.Quarantined),
		Decoded:     int(decoded),
		DecodeFails: len(runReport.Succeeded) - int(decoded),
		Exported:    int(exported),
		ExportFails: int(exportFails),
		Jobs:        append(runReport.Succeeded, runReport.Quarantined...),
		Exports:     exportManager.Results,
		StartedAt:   start,
		FinishedAt:  time.Now(),
	}

	store.UpdateBatchStatus(batchID, "completed")
	tracker.Complete("completed")
	fmt.Printf("🏁 Batch %s completed in %v: %d/%d simulated, %d quarantined, %d exported\n",
		batchID, time.Since(start), report.Succeeded, report.Total, report.Quarantined, report.Exported)
	return report, nil
}

func buildRunner(spec model.BatchSpec) *runner.Runner {
	cfg := runner.Config{
		OutputSuffix:   spec.Runner.OutputSuffix,
		ScratchDir:     spec.Runner.ScratchDir,
		OutputDir:      spec.Runner.OutputDir,
		QuarantineDir:  spec.Runner.QuarantineDir,
		Limit:          spec.Concurrency.SimulatorLimit,
		ProcessName:    spec.Runner.ProcessName,
		AppearTimeout:  utils.ParseDuration(spec.Runner.AppearTimeout, 30*time.Second),
		StableInterval: utils.ParseDuration(spec.Runner.StableInterval, 500*time.Millisecond),
		StableSamples:  spec.Runner.StableSamples,
		ProcessTimeout: utils.ParseDuration(spec.Runner.ProcessTimeout, 0), // 0 = unbounded
	}
	return runner.New(cfg, runner.ExecLauncher{Executable: spec.Runner.Executable}, runner.ProcProbe{})
}
