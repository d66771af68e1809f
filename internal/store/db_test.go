package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-atp-pipeline/internal/model"
)

var errTest = errors.New("simulator exited without output")

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db = nil })
}

func TestBatchLifecycle(t *testing.T) {
	initTestDB(t)

	spec := model.BatchSpec{
		InputDir: "decks",
		Runner:   model.RunnerSpec{Executable: "./runATP", OutputDir: "out"},
		Export:   model.ExportSpec{Mode: "full", Dir: "exports"},
	}

	if err := SaveBatch("batch-1", spec); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if err := UpdateBatchStatus("batch-1", "running"); err != nil {
		t.Fatalf("UpdateBatchStatus: %v", err)
	}

	batch, err := GetBatch("batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if batch["status"] != "running" {
		t.Errorf("status = %v, want running", batch["status"])
	}

	stored, err := GetBatchSpec("batch-1")
	if err != nil {
		t.Fatalf("GetBatchSpec: %v", err)
	}
	if stored.InputDir != "decks" || stored.Runner.Executable != "./runATP" {
		t.Errorf("stored spec = %+v", stored)
	}

	batches, err := ListBatches()
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("listed %d batches, want 1", len(batches))
	}

	if _, err := GetBatch("no-such-batch"); err == nil {
		t.Error("GetBatch succeeded for unknown id")
	}
}

func TestJobAndErrorRecords(t *testing.T) {
	initTestDB(t)

	now := time.Now().UTC()
	job := model.SimulationJob{
		Input:    "decks/case.atp",
		State:    model.JobSucceeded,
		Artifact: "out/case.pl4",
		Started:  now,
		Finished: now.Add(time.Second),
	}
	if err := SaveJobOutcome("batch-2", job); err != nil {
		t.Fatalf("SaveJobOutcome: %v", err)
	}

	jobs, err := GetBatchJobs("batch-2")
	if err != nil {
		t.Fatalf("GetBatchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0]["state"] != "succeeded" {
		t.Errorf("state = %v, want succeeded", jobs[0]["state"])
	}

	if err := SaveBatchError("batch-2", errTest); err != nil {
		t.Fatalf("SaveBatchError: %v", err)
	}
	errs, err := GetBatchErrors("batch-2")
	if err != nil {
		t.Fatalf("GetBatchErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0]["message"] != errTest.Error() {
		t.Errorf("message = %v, want %q", errs[0]["message"], errTest.Error())
	}
}

func TestWritesAreNoopsWithoutDB(t *testing.T) {
	db = nil
	if err := SaveBatch("x", model.BatchSpec{}); err != nil {
		t.Errorf("SaveBatch without db: %v", err)
	}
	if err := UpdateBatchStatus("x", "running"); err != nil {
		t.Errorf("UpdateBatchStatus without db: %v", err)
	}
	if err := SaveJobOutcome("x", model.SimulationJob{}); err != nil {
		t.Errorf("SaveJobOutcome without db: %v", err)
	}
	if err := SaveBatchError("x", errTest); err != nil {
		t.Errorf("SaveBatchError without db: %v", err)
	}
	if err := SaveExportResult("x", model.ExportResult{}); err != nil {
		t.Errorf("SaveExportResult without db: %v", err)
	}
}
