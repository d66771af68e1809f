package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pl4"
)

// ErrExportIO marks a failure to persist an export destination (disk,
// permissions). A failed export never leaves a partial file behind and never
// overwrites a prior successful export of the same destination.
var ErrExportIO = errors.New("export: write failure")

// LengthMismatchError reports a selected series whose length differs from
// the time vector's.
type LengthMismatchError struct {
	Series string
	Got    int
	Want   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("export: series %q has %d samples, time vector has %d", e.Series, e.Got, e.Want)
}

// Column is one named channel series selected for export.
type Column struct {
	Name   string
	Values []float32
}

// ExportManager writes normalized datasets as flat row-per-sample tables:
// one time column first, then one column per channel in original order.
type ExportManager struct {
	Spec    model.ExportSpec
	Results []model.ExportResult
	Mutex   sync.Mutex
}

func NewExportManager(spec model.ExportSpec) *ExportManager {
	if spec.Format == "" {
		spec.Format = "parquet"
	}
	return &ExportManager{Spec: spec}
}

// Destination returns the output path for one input stem, e.g.
// exports/sweep_017.parquet.
func (em *ExportManager) Destination(stem string) string {
	return filepath.Join(em.Spec.Dir, stem+"."+em.Spec.Format)
}

// ExportDataset exports every channel of a decoded dataset, columns named by
// display label.
func (em *ExportManager) ExportDataset(ds *pl4.Dataset, dest string) model.ExportResult {
	cols := make([]Column, len(ds.Data))
	for i, label := range ds.Labels() {
		cols[i] = Column{Name: label, Values: ds.Data[i]}
	}
	return em.export(ds.Time, cols, dest)
}

// ExportSelected exports a caller-chosen subset of series. Every series must
// match the time vector's length; a mismatch fails the call without
// producing any output file.
func (em *ExportManager) ExportSelected(timeVec []float32, cols []Column, dest string) model.ExportResult {
	for _, col := range cols {
		if len(col.Values) != len(timeVec) {
			return em.record(dest, nil, 0,
				&LengthMismatchError{Series: col.Name, Got: len(col.Values), Want: len(timeVec)})
		}
	}
	return em.export(timeVec, cols, dest)
}

func (em *ExportManager) export(timeVec []float32, cols []Column, dest string) model.ExportResult {
	names := dedupeNames(columnNames(cols))
	columns := append([]string{"time"}, names...)

	// Write to a temp file first, then rename into place, so a failure can
	// never clobber a prior successful export of the same destination.
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return em.record(dest, columns, 0, fmt.Errorf("%w: %v", ErrExportIO, err))
	}
	tmp := dest + ".tmp"

	var err error
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".csv":
		err = writeCSV(tmp, timeVec, names, cols)
	case ".json":
		err = writeJSON(tmp, timeVec, names, cols)
	default:
		// Parquet is the primary sink; unknown extensions fall through to it.
		err = writeParquet(tmp, timeVec, names, cols)
	}
	if err == nil {
		err = os.Rename(tmp, dest)
	}
	if err != nil {
		os.Remove(tmp)
		return em.record(dest, columns, 0, fmt.Errorf("%w: %v", ErrExportIO, err))
	}
	return em.record(dest, columns, len(timeVec), nil)
}

func (em *ExportManager) record(dest string, columns []string, rows int, err error) model.ExportResult {
	result := model.ExportResult{
		Type:        exportType(dest),
		Path:        dest,
		Columns:     columns,
		RecordCount: rows,
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		fmt.Printf("❌ Export failed: %s: %v\n", dest, err)
	} else {
		fmt.Printf("✅ Export: %d rows, %d columns → %s\n", rows, len(columns), dest)
	}
	em.Mutex.Lock()
	em.Results = append(em.Results, result)
	em.Mutex.Unlock()
	return result
}

func exportType(dest string) string {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	default:
		return "parquet"
	}
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// dedupeNames disambiguates duplicate column names deterministically: the
// first occurrence keeps the bare name, later occurrences are suffixed _2,
// _3, … in encounter order.
func dedupeNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		seen[name]++
		if seen[name] == 1 {
			out[i] = name
		} else {
			out[i] = fmt.Sprintf("%s_%d", name, seen[name])
		}
	}
	return out
}

// ------------------- sinks -------------------

func writeParquet(path string, timeVec []float32, names []string, cols []Column) error {
	fields := make([]arrow.Field, 0, len(cols)+1)
	fields = append(fields, arrow.Field{Name: "time", Type: arrow.PrimitiveTypes.Float32})
	for _, name := range names {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float32})
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()
	builder.Field(0).(*array.Float32Builder).AppendValues(timeVec, nil)
	for i, col := range cols {
		builder.Field(i + 1).(*array.Float32Builder).AppendValues(col.Values, nil)
	}
	rec := builder.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := pqarrow.NewFileWriter(schema, f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeCSV(path string, timeVec []float32, names []string, cols []Column) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	row := make([]string, len(cols)+1)
	for r := range timeVec {
		row[0] = formatSample(timeVec[r])
		for c, col := range cols {
			row[c+1] = formatSample(col.Values[r])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, timeVec []float32, names []string, cols []Column) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	series := make(map[string][]float32, len(cols)+1)
	series["time"] = timeVec
	for i, col := range cols {
		series[names[i]] = col.Values
	}
	payload := map[string]interface{}{
		"export_info": map[string]interface{}{
			"exported_at":  time.Now().UTC(),
			"record_count": len(timeVec),
			"columns":      append([]string{"time"}, names...),
		},
		"data": series,
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func formatSample(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
