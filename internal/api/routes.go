// Package api is the HTTP transport collaborator: it wires the
// query-planning pipeline to two endpoints plus a liveness probe.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/storage"
)

// handlers holds the dependencies every route needs: the storage adapter
// the pipeline runs against, and a logger for structured request/error
// logging.
type handlers struct {
	storage storage.Storage
	logger  *zap.Logger
}

// SetupRoutes builds the chi router for the two real endpoints plus
// /healthz, with structured request logging and permissive CORS applied
// globally.
func SetupRoutes(store storage.Storage, logger *zap.Logger) http.Handler {
	h := &handlers{storage: store, logger: logger}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(logger))
	r.Use(corsMiddleware)

	r.Get("/healthz", h.handleHealthz)
	r.Get("/properties", h.handleProperties)
	r.Post("/search", h.handleSearch)

	return r
}
