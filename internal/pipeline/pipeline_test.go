package pipeline

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go-atp-pipeline/internal/model"
)

// pl4Bytes builds a minimal valid result file: one channel, the given time
// and value samples.
func pl4Bytes(deltaT float32, timeVec, values []float32) []byte {
	const nvar = 1
	records := len(timeVec)
	rowBytes := (nvar + 1) * 4
	declared := 5*16 + nvar*16 + records*rowBytes

	buf := make([]byte, (5+nvar)*16+records*rowBytes)
	binary.LittleEndian.PutUint32(buf[40:], math.Float32bits(deltaT))
	binary.LittleEndian.PutUint32(buf[48:], uint32(2*nvar))
	binary.LittleEndian.PutUint32(buf[56:], uint32(declared+1))

	d := buf[5*16:]
	d[3] = 4 // node voltage
	copy(d[4:10], "BUS   ")
	copy(d[10:16], "GND   ")

	base := (5 + nvar) * 16
	for r := 0; r < records; r++ {
		row := buf[base+r*rowBytes:]
		binary.LittleEndian.PutUint32(row, math.Float32bits(timeVec[r]))
		binary.LittleEndian.PutUint32(row[4:], math.Float32bits(values[r]))
	}
	return buf
}

// stubSimulator writes a shell script that "simulates" by renaming its input
// deck to the expected .pl4 artifact. The decks themselves carry valid result
// bytes, so the downstream decode sees a real waveform.
func stubSimulator(t *testing.T, dir string) string {
	t.Helper()
	script := filepath.Join(dir, "fake-sim.sh")
	body := "#!/bin/sh\ncp \"$1\" \"$(basename \"$1\" .atp).pl4\"\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	return script
}

func fastBatchSpec(t *testing.T) model.BatchSpec {
	t.Helper()
	root := t.TempDir()
	return model.BatchSpec{
		Runner: model.RunnerSpec{
			Executable:     stubSimulator(t, root),
			ScratchDir:     filepath.Join(root, "tmp-runs"),
			OutputDir:      filepath.Join(root, "results"),
			QuarantineDir:  filepath.Join(root, "quarantine"),
			AppearTimeout:  "200ms",
			StableInterval: "5ms",
			StableSamples:  5,
		},
		Export: model.ExportSpec{
			Mode:   "full",
			Format: "csv",
			Dir:    filepath.Join(root, "exports"),
		},
		Concurrency: model.ConcurrencySpec{
			SimulatorLimit: 2,
			Workers:        model.Workers{Extract: 2, Export: 1},
			BatchTimeout:   "30s",
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	spec := fastBatchSpec(t)

	deckDir := t.TempDir()
	waveform := pl4Bytes(0.001, []float32{0, 0.001, 0.002}, []float32{1, 2, 3})
	for _, name := range []string{"case_a.atp", "case_b.atp"} {
		if err := os.WriteFile(filepath.Join(deckDir, name), waveform, 0644); err != nil {
			t.Fatal(err)
		}
	}
	spec.InputDir = deckDir

	report, err := Run(context.Background(), "test-batch", spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 2 || report.Succeeded != 2 {
		t.Errorf("simulated %d/%d, want 2/2", report.Succeeded, report.Total)
	}
	if report.Quarantined != 0 {
		t.Errorf("quarantined = %d, want 0", report.Quarantined)
	}
	if report.Decoded != 2 || report.Exported != 2 {
		t.Errorf("decoded/exported = %d/%d, want 2/2", report.Decoded, report.Exported)
	}

	for _, stem := range []string{"case_a", "case_b"} {
		table := filepath.Join(spec.Export.Dir, stem+".csv")
		if _, err := os.Stat(table); err != nil {
			t.Errorf("export %s missing: %v", table, err)
		}
	}
	if len(report.Exports) != 2 {
		t.Errorf("export results = %d, want 2", len(report.Exports))
	}
}

func TestRunQuarantinesWhenSimulatorProducesNothing(t *testing.T) {
	spec := fastBatchSpec(t)
	// An executable that cannot run: nothing will ever appear.
	spec.Runner.Executable = filepath.Join(t.TempDir(), "missing-sim")

	deckDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(deckDir, "doomed.atp"), []byte("deck"), 0644); err != nil {
		t.Fatal(err)
	}
	spec.InputDir = deckDir

	report, err := Run(context.Background(), "doomed-batch", spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Quarantined != 1 || report.Succeeded != 0 {
		t.Errorf("succeeded/quarantined = %d/%d, want 0/1", report.Succeeded, report.Quarantined)
	}
	if report.Exported != 0 {
		t.Errorf("exported = %d, want 0", report.Exported)
	}
	if _, err := os.Stat(filepath.Join(spec.Runner.QuarantineDir, "doomed.atp")); err != nil {
		t.Errorf("quarantine copy missing: %v", err)
	}
}

func TestRunFailsWithoutInputs(t *testing.T) {
	spec := fastBatchSpec(t)
	spec.InputDir = t.TempDir() // empty

	if _, err := Run(context.Background(), "empty-batch", spec); err == nil {
		t.Fatal("Run succeeded with no inputs")
	}
}

func TestRetryBatchWithoutQuarantine(t *testing.T) {
	spec := fastBatchSpec(t)
	os.MkdirAll(spec.Runner.QuarantineDir, 0755)

	if _, err := RetryBatch(context.Background(), "batch", spec); err == nil {
		t.Fatal("RetryBatch succeeded with empty quarantine")
	}
}
