package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// StageMetrics tracks one pipeline stage.
type StageMetrics struct {
	StartTime   time.Time     `json:"start_time"`
	EndTime     *time.Time    `json:"end_time,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Processed   int64         `json:"processed"`
	ErrorCount  int64         `json:"error_count"`
	WorkerCount int           `json:"worker_count"`
	Status      string        `json:"status"` // "running", "completed"
}

// ErrorDetail attributes one failure to a specific input and stage.
type ErrorDetail struct {
	Timestamp time.Time `json:"timestamp"`
	Stage     string    `json:"stage"`
	Input     string    `json:"input,omitempty"`
	Message   string    `json:"message"`
}

// BatchMetrics is the live view of one batch's progress.
type BatchMetrics struct {
	BatchID   string        `json:"batch_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Status    string        `json:"status"`

	Runner  StageMetrics `json:"runner_metrics"`
	Extract StageMetrics `json:"extract_metrics"`
	Export  StageMetrics `json:"export_metrics"`

	TotalInputs int64         `json:"total_inputs"`
	ErrorCount  int64         `json:"error_count"`
	Errors      []ErrorDetail `json:"errors,omitempty"`
}

// BatchTracker collects metrics for one running batch. Safe for concurrent
// use by the stage goroutines.
type BatchTracker struct {
	BatchID string
	Metrics *BatchMetrics
	Mutex   sync.RWMutex
}

func NewBatchTracker(batchID string, totalInputs int) *BatchTracker {
	tracker := &BatchTracker{
		BatchID: batchID,
		Metrics: &BatchMetrics{
			BatchID:     batchID,
			StartTime:   time.Now(),
			Status:      "running",
			TotalInputs: int64(totalInputs),
		},
	}
	registerTracker(tracker)
	return tracker
}

func (bt *BatchTracker) stage(name string) *StageMetrics {
	switch name {
	case "runner":
		return &bt.Metrics.Runner
	case "extract":
		return &bt.Metrics.Extract
	default:
		return &bt.Metrics.Export
	}
}

// StartStage marks a stage running.
func (bt *BatchTracker) StartStage(name string, workerCount int) {
	bt.Mutex.Lock()
	defer bt.Mutex.Unlock()
	s := bt.stage(name)
	s.StartTime = time.Now()
	s.WorkerCount = workerCount
	s.Status = "running"
	fmt.Printf("📊 Stage '%s' started with %d workers\n", name, workerCount)
}

// EndStage marks a stage completed.
func (bt *BatchTracker) EndStage(name string, processed int64) {
	bt.Mutex.Lock()
	defer bt.Mutex.Unlock()
	now := time.Now()
	s := bt.stage(name)
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.Processed = processed
	s.Status = "completed"
	fmt.Printf("📊 Stage '%s' completed: %d processed in %v\n", name, processed, s.Duration)
}

// RecordError attributes a failure to a stage and input.
func (bt *BatchTracker) RecordError(stage, input, message string) {
	bt.Mutex.Lock()
	defer bt.Mutex.Unlock()
	bt.Metrics.ErrorCount++
	bt.stage(stage).ErrorCount++
	bt.Metrics.Errors = append(bt.Metrics.Errors, ErrorDetail{
		Timestamp: time.Now(),
		Stage:     stage,
		Input:     input,
		Message:   message,
	})
}

// Complete marks the batch finished.
func (bt *BatchTracker) Complete(status string) {
	bt.Mutex.Lock()
	defer bt.Mutex.Unlock()
	now := time.Now()
	bt.Metrics.EndTime = &now
	bt.Metrics.Status = status
	bt.Metrics.Duration = now.Sub(bt.Metrics.StartTime)
}

// GetMetrics returns a copy of the current metrics.
func (bt *BatchTracker) GetMetrics() BatchMetrics {
	bt.Mutex.RLock()
	defer bt.Mutex.RUnlock()
	metrics := *bt.Metrics
	return metrics
}

// ------------------- tracker registry -------------------

var (
	trackersMu sync.RWMutex
	trackers   = make(map[string]*BatchTracker)
)

func registerTracker(bt *BatchTracker) {
	trackersMu.Lock()
	trackers[bt.BatchID] = bt
	trackersMu.Unlock()
}

// TrackerFor returns the live tracker for a batch, or nil when the batch is
// unknown to this process.
func TrackerFor(batchID string) *BatchTracker {
	trackersMu.RLock()
	defer trackersMu.RUnlock()
	return trackers[batchID]
}
