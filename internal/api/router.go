package api

import (
	"net/http"
	"spacetime-service/internal/api/handlers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Batcher          handlers.DenseQuerier
	Grids            handlers.GridService
	Cache            handlers.CacheAdmin
	APIKeyConfigured bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	matrixHandler := &handlers.MatrixHandler{Batcher: deps.Batcher}
	gridHandler := &handlers.GridHandler{Grids: deps.Grids}
	cacheHandler := &handlers.CacheHandler{Cache: deps.Cache}
	healthHandler := &handlers.HealthHandler{Cache: deps.Cache, APIKeyConfigured: deps.APIKeyConfigured}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/api/distance-matrix", matrixHandler.DistanceMatrix)
	mux.HandleFunc("/api/spacetime-grid", gridHandler.Spacetime)
	mux.HandleFunc("/api/grid", gridHandler.Grid)
	mux.HandleFunc("/api/cache/stats", cacheHandler.Stats)
	mux.HandleFunc("/api/cache/clear", cacheHandler.Clear)
	mux.HandleFunc("/api/travel-modes", handlers.TravelModes)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(mux)
}
