package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go-atp-pipeline/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// Initialize DB connection. One-shot CLI runs may skip this; every write
// below is a no-op until InitDB has been called.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	batchTable := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS batch_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	jobTable := `
	CREATE TABLE IF NOT EXISTS batch_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT,
		input TEXT,
		state TEXT,
		artifact TEXT,
		error_message TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);
	`
	exportTable := `
	CREATE TABLE IF NOT EXISTS batch_exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT,
		type TEXT,
		path TEXT,
		record_count INTEGER,
		success INTEGER,
		error_message TEXT,
		exported_at DATETIME
	);
	`

	for _, stmt := range []string{batchTable, errorTable, jobTable, exportTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveBatch stores a new batch
func SaveBatch(batchID string, spec model.BatchSpec) error {
	if db == nil {
		return nil
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO batches (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		batchID, specJSON, "pending", now, now)
	return err
}

// SaveBatchError records an error for a batch
func SaveBatchError(batchID string, err error) error {
	if db == nil || err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO batch_errors (batch_id, error_message, created_at) VALUES (?, ?, ?)`,
		batchID, err.Error(), now)
	return e
}

// SaveJobOutcome records the final state of one simulation job
func SaveJobOutcome(batchID string, job model.SimulationJob) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO batch_jobs (batch_id, input, state, artifact, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, job.Input, job.State.String(), job.Artifact, job.Error, job.Started, job.Finished)
	return err
}

// SaveExportResult records one export attempt
func SaveExportResult(batchID string, result model.ExportResult) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO batch_exports (batch_id, type, path, record_count, success, error_message, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, result.Type, result.Path, result.RecordCount, result.Success, result.Error, result.ExportedAt)
	return err
}

// ListBatches returns all batches with basic info
func ListBatches() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return batches, nil
}

// GetBatch fetches full batch spec and status
func GetBatch(batchID string) (map[string]interface{}, error) {
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM batches WHERE id = ?`, batchID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.BatchSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        batchID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetBatchSpec fetches only the stored spec, for retries
func GetBatchSpec(batchID string) (model.BatchSpec, error) {
	var spec model.BatchSpec
	var specJSON string
	err := db.QueryRow(`SELECT spec FROM batches WHERE id = ?`, batchID).Scan(&specJSON)
	if err != nil {
		return spec, err
	}
	err = json.Unmarshal([]byte(specJSON), &spec)
	return spec, err
}

// GetBatchErrors returns all recorded errors for a batch
func GetBatchErrors(batchID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM batch_errors WHERE batch_id = ? ORDER BY created_at`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []map[string]interface{}
	for rows.Next() {
		var message string
		var createdAt time.Time
		if err := rows.Scan(&message, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return errs, nil
}

// GetBatchJobs returns the per-input job outcomes for a batch
func GetBatchJobs(batchID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT input, state, artifact, error_message, started_at, finished_at
		FROM batch_jobs WHERE batch_id = ? ORDER BY started_at`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var input, state, artifact, errMsg string
		var startedAt, finishedAt time.Time
		if err := rows.Scan(&input, &state, &artifact, &errMsg, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"input":      input,
			"state":      state,
			"artifact":   artifact,
			"error":      errMsg,
			"startedAt":  startedAt,
			"finishedAt": finishedAt,
		})
	}
	return jobs, nil
}

// UpdateBatchStatus updates batch status
func UpdateBatchStatus(batchID string, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE batches SET status = ?, updated_at = ? WHERE id = ?`, status, now, batchID)
	return err
}
