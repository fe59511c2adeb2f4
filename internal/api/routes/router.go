package routes

import (
	"net/http"

	"github.com/zatekoja/wastenutrient/internal/api/handlers"
	"github.com/zatekoja/wastenutrient/internal/api/middleware"
	"github.com/zatekoja/wastenutrient/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	analysisHandler *handlers.AnalysisHandler
	plantHandler    *handlers.PlantHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	analysisHandler *handlers.AnalysisHandler,
	plantHandler *handlers.PlantHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		analysisHandler: analysisHandler,
		plantHandler:    plantHandler,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Session endpoints
	r.mux.HandleFunc("POST /api/datasets", r.analysisHandler.UploadDataset)
	r.mux.HandleFunc("GET /api/datasets/current", r.analysisHandler.GetDataset)
	r.mux.HandleFunc("POST /api/models", r.analysisHandler.TrainModel)
	r.mux.HandleFunc("GET /api/models/current", r.analysisHandler.GetModel)
	r.mux.HandleFunc("POST /api/predictions", r.analysisHandler.Predict)
	r.mux.HandleFunc("POST /api/recommendations", r.analysisHandler.Recommend)

	// Plant catalog
	r.mux.HandleFunc("GET /api/plants", r.plantHandler.ListPlants)
	r.mux.HandleFunc("GET /api/plants/{name}", r.plantHandler.GetPlant)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
