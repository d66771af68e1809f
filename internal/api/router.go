package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"go-atp-pipeline/internal/api/handler"
	_ "go-atp-pipeline/docs"
)

// NewRouter builds the HTTP API for submitting and inspecting batches.
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/batches", handler.CreateBatch)
		r.Get("/batches", handler.ListBatches)
		r.Get("/batches/{id}", handler.GetBatch)
		r.Get("/batches/{id}/errors", handler.GetBatchErrors)
		r.Get("/batches/{id}/jobs", handler.GetBatchJobs)
		r.Get("/batches/{id}/metrics", handler.GetBatchMetrics)
		r.Post("/batches/{id}/retry", handler.RetryBatch)
	})

	return r
}
