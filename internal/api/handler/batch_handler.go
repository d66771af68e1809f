package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"go-atp-pipeline/internal/config"
	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/internal/pipeline"
	"go-atp-pipeline/internal/store"
	"go-atp-pipeline/pkg/utils"
)

// CreateBatch creates a new simulation sweep batch
// @Summary Create a new batch
// @Description Create and start a new simulation sweep batch with the provided spec
// @Tags batches
// @Accept json
// @Produce json
// @Param batch body model.BatchSpec true "Batch spec"
// @Success 200 {object} map[string]interface{} "Batch created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /batches [post]
func CreateBatch(w http.ResponseWriter, r *http.Request) {
	var spec model.BatchSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := config.Validate(spec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batchID := uuid.New().String()

	if err := store.SaveBatch(batchID, spec); err != nil {
		http.Error(w, "Failed to save batch", http.StatusInternalServerError)
		return
	}

	// Start the batch asynchronously
	ctx, cancel := context.WithTimeout(context.Background(),
		utils.ParseDuration(spec.Concurrency.BatchTimeout, 30*time.Minute))
	go func() {
		defer cancel()
		if _, err := pipeline.Run(ctx, batchID, spec); err != nil {
			store.SaveBatchError(batchID, err)
		}
	}()

	resp := map[string]interface{}{
		"message":   "Batch created successfully!",
		"batchID":   batchID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListBatches retrieves all batches
// @Summary List all batches
// @Description Get a list of all batches with their current status
// @Tags batches
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of batches"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /batches [get]
func ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := store.ListBatches()
	if err != nil {
		http.Error(w, "Failed to fetch batches", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batches)
}

// GetBatch retrieves a specific batch
// @Summary Get batch
// @Description Retrieve spec and status of a specific batch
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Batch details"
// @Failure 404 {object} map[string]interface{} "Batch not found"
// @Router /batches/{id} [get]
func GetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	batch, err := store.GetBatch(batchID)
	if err != nil {
		http.Error(w, "Batch not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}

// GetBatchErrors retrieves errors for a batch
// @Summary Get batch errors
// @Description Retrieve all errors recorded during batch execution
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Batch errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /batches/{id}/errors [get]
func GetBatchErrors(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	errors, err := store.GetBatchErrors(batchID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"batch_id": batchID,
		"errors":   errors,
		"count":    len(errors),
	})
}

// GetBatchJobs retrieves per-input job outcomes for a batch
// @Summary Get batch jobs
// @Description Retrieve the outcome of every simulation job in a batch
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Batch jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /batches/{id}/jobs [get]
func GetBatchJobs(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	jobs, err := store.GetBatchJobs(batchID)
	if err != nil {
		http.Error(w, "Failed to retrieve jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"batch_id": batchID,
		"jobs":     jobs,
		"count":    len(jobs),
	})
}

// GetBatchMetrics retrieves live stage metrics for a batch
// @Summary Get batch metrics
// @Description Retrieve live per-stage metrics for a batch running in this process
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Batch metrics"
// @Failure 404 {object} map[string]interface{} "Batch not running in this process"
// @Router /batches/{id}/metrics [get]
func GetBatchMetrics(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	tracker := pipeline.TrackerFor(batchID)
	if tracker == nil {
		http.Error(w, "No live metrics for this batch", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tracker.GetMetrics())
}

// RetryBatch re-runs the quarantined decks of a batch
// @Summary Retry batch
// @Description Re-run the decks that landed in the batch's quarantine directory
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Retry initiated"
// @Failure 404 {object} map[string]interface{} "Batch not found"
// @Router /batches/{id}/retry [post]
func RetryBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	spec, err := store.GetBatchSpec(batchID)
	if err != nil {
		http.Error(w, "Batch not found", http.StatusNotFound)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(),
			utils.ParseDuration(spec.Concurrency.BatchTimeout, 30*time.Minute))
		defer cancel()
		if _, err := pipeline.RetryBatch(ctx, batchID, spec); err != nil {
			fmt.Printf("❌ Retry failed for batch %s: %v\n", batchID, err)
			store.SaveBatchError(batchID, err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Retry initiated",
		"batch_id": batchID,
		"status":   "retrying",
	})
}
