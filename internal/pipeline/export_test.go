package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pl4"
)

func TestDedupeNames(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"A", "A", "B"}, []string{"A", "A_2", "B"}},
		{[]string{"A", "B", "C"}, []string{"A", "B", "C"}},
		{[]string{"X", "X", "X"}, []string{"X", "X_2", "X_3"}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		if got := dedupeNames(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("dedupeNames(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDestination(t *testing.T) {
	em := NewExportManager(model.ExportSpec{Dir: "exports", Format: "csv"})
	want := filepath.Join("exports", "sweep_017.csv")
	if got := em.Destination("sweep_017"); got != want {
		t.Errorf("Destination = %q, want %q", got, want)
	}
}

func TestExportManagerDefaultFormat(t *testing.T) {
	em := NewExportManager(model.ExportSpec{Dir: "exports"})
	if em.Spec.Format != "parquet" {
		t.Errorf("default format = %q, want parquet", em.Spec.Format)
	}
}

func TestExportSelectedLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	em := NewExportManager(model.ExportSpec{Dir: dir, Format: "csv"})
	dest := em.Destination("bad")

	cols := []Column{
		{Name: "ok", Values: []float32{1, 2, 3}},
		{Name: "short", Values: []float32{1}},
	}
	result := em.ExportSelected([]float32{0, 1, 2}, cols, dest)

	if result.Success {
		t.Fatal("export succeeded despite length mismatch")
	}
	if !strings.Contains(result.Error, "short") {
		t.Errorf("error %q does not name the offending series", result.Error)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("mismatched export left an output file behind")
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("mismatched export left a temp file behind")
	}
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	em := NewExportManager(model.ExportSpec{Dir: dir, Format: "csv"})
	dest := em.Destination("run")

	cols := []Column{
		{Name: "A", Values: []float32{1.5, 2.5}},
		{Name: "A", Values: []float32{3, 4}},
		{Name: "B", Values: []float32{5, 6}},
	}
	result := em.ExportSelected([]float32{0, 0.25}, cols, dest)
	if !result.Success {
		t.Fatalf("export failed: %s", result.Error)
	}
	if result.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", result.RecordCount)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	wantHeader := []string{"time", "A", "A_2", "B"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(rows))
	}
	if rows[1][0] != "0" || rows[1][1] != "1.5" || rows[2][3] != "6" {
		t.Errorf("unexpected sample values: %v", rows[1:])
	}
}

func TestExportDatasetJSON(t *testing.T) {
	dir := t.TempDir()
	em := NewExportManager(model.ExportSpec{Dir: dir, Format: "json"})

	ds := &pl4.Dataset{
		Time: []float32{0, 1},
		Data: [][]float32{{7, 8}},
		Channels: []pl4.ChannelDescriptor{
			{Type: 4, From: "BUS", To: "GND"},
		},
		Records: 2,
		DeltaT:  1,
		TMax:    1,
	}
	result := em.ExportDataset(ds, em.Destination("one"))
	if !result.Success {
		t.Fatalf("export failed: %s", result.Error)
	}

	raw, err := os.ReadFile(em.Destination("one"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var payload struct {
		Data map[string][]float32 `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if got := payload.Data["time"]; len(got) != 2 {
		t.Errorf("time series = %v, want 2 samples", got)
	}
	if got := payload.Data["BUS-GND (node voltage)"]; len(got) != 2 || got[0] != 7 {
		t.Errorf("channel series = %v, want [7 8]", got)
	}
}

func TestExportResultsRecorded(t *testing.T) {
	dir := t.TempDir()
	em := NewExportManager(model.ExportSpec{Dir: dir, Format: "csv"})

	em.ExportSelected([]float32{0}, []Column{{Name: "A", Values: []float32{1}}}, em.Destination("ok"))
	em.ExportSelected([]float32{0}, []Column{{Name: "A", Values: []float32{1, 2}}}, em.Destination("bad"))

	if len(em.Results) != 2 {
		t.Fatalf("Results length = %d, want 2", len(em.Results))
	}
	if !em.Results[0].Success || em.Results[1].Success {
		t.Errorf("success flags = %v, %v, want true, false",
			em.Results[0].Success, em.Results[1].Success)
	}
}
