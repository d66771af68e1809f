package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pl4"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("deck"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGatherInputsFromDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.atp"))
	touch(t, filepath.Join(dir, "a.atp"))
	touch(t, filepath.Join(dir, "notes.txt"))

	inputs, err := GatherInputs(model.BatchSpec{InputDir: dir})
	if err != nil {
		t.Fatalf("GatherInputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("found %d inputs, want 2", len(inputs))
	}
	if filepath.Base(inputs[0]) != "a.atp" || filepath.Base(inputs[1]) != "b.atp" {
		t.Errorf("inputs not sorted: %v", inputs)
	}
}

func TestGatherInputsExplicit(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "case.atp")
	touch(t, deck)

	inputs, err := GatherInputs(model.BatchSpec{Inputs: []string{deck}})
	if err != nil {
		t.Fatalf("GatherInputs: %v", err)
	}
	if len(inputs) != 1 || inputs[0] != deck {
		t.Errorf("inputs = %v, want [%s]", inputs, deck)
	}

	if _, err := GatherInputs(model.BatchSpec{Inputs: []string{filepath.Join(dir, "gone.atp")}}); err == nil {
		t.Error("missing explicit input should fail")
	}
}

func TestGatherInputsEmpty(t *testing.T) {
	if _, err := GatherInputs(model.BatchSpec{InputDir: t.TempDir()}); err == nil {
		t.Error("empty input directory should fail")
	}
	if _, err := GatherInputs(model.BatchSpec{}); err == nil {
		t.Error("spec without inputs should fail")
	}
}

func TestSelectColumns(t *testing.T) {
	ds := &pl4.Dataset{
		Time: []float32{0, 1},
		Data: [][]float32{{1, 2}, {3, 4}, {5, 6}},
		Channels: []pl4.ChannelDescriptor{
			{Type: 4, From: "A", To: "B"},
			{Type: 9, From: "C", To: "D"},
			{Type: 8, From: "E", To: "F"},
		},
	}
	labels := ds.Labels()

	// Explicit selection preserves file order regardless of request order.
	cols := SelectColumns(ds, []string{labels[2], labels[0]})
	if len(cols) != 2 {
		t.Fatalf("selected %d columns, want 2", len(cols))
	}
	if cols[0].Name != labels[0] || cols[1].Name != labels[2] {
		t.Errorf("selection order = %q, %q, want file order", cols[0].Name, cols[1].Name)
	}

	// Empty selection means every channel.
	all := SelectColumns(ds, nil)
	if len(all) != 3 {
		t.Errorf("selected %d columns, want all 3", len(all))
	}

	// Unknown labels select nothing.
	if none := SelectColumns(ds, []string{"bogus"}); len(none) != 0 {
		t.Errorf("selected %d columns for unknown label, want 0", len(none))
	}
}
