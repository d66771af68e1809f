package model

import "time"

// ExportResult represents the result of one export operation.
type ExportResult struct {
	Type        string    `json:"type"` // "parquet", "csv", "json"
	Path        string    `json:"path"` // destination file path
	Columns     []string  `json:"columns,omitempty"`
	RecordCount int       `json:"record_count"` // rows written
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// BatchReport summarizes one finished batch: how many simulations ran,
// which inputs were quarantined, and what was exported. Every failure is
// attributable to a specific input file.
type BatchReport struct {
	BatchID     string          `json:"batch_id"`
	Total       int             `json:"total"`
	Succeeded   int             `json:"succeeded"`
	Quarantined int             `json:"quarantined"`
	Decoded     int             `json:"decoded"`
	DecodeFails int             `json:"decode_failures"`
	Exported    int             `json:"exported"`
	ExportFails int             `json:"export_failures"`
	Jobs        []SimulationJob `json:"jobs,omitempty"`
	Exports     []ExportResult  `json:"exports,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
}
