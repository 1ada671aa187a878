// Package httpapi exposes the preparation system over a JSON HTTP API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/services/settings"
)

// HealthChecker reports whether the backing store is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	GetStats(ctx context.Context) (*database.Stats, error)
}

// Services groups the application services the API serves.
type Services struct {
	Inventory     *inventory.Service
	Manufacturing *manufacturing.Service
	Recipes       *recipes.Service
	Settings      *settings.Service
	Health        HealthChecker
}

// Server routes API requests to the services.
type Server struct {
	svc    Services
	logger *slog.Logger
	router chi.Router
}

// NewServer creates a server and builds its routes.
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		logger: logger.With("component", "http"),
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProduct)
				r.Put("/", s.handleUpdateProduct)
				r.Get("/recipe", s.handleGetRecipe)
				r.Get("/recipe/status", s.handleRecipeStatus)
				r.Post("/recipe/calculate", s.handleCalculateRecipe)
			})
		})

		r.Get("/recipes", s.handleListRecipes)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetOrder)
				r.Put("/", s.handleUpdateOrder)
				r.Delete("/", s.handleDeleteOrder)
				r.Get("/variance", s.handleOrderVariance)
				r.Post("/complete", s.handleCompleteOrder)
				r.Post("/clone", s.handleCloneOrder)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Put("/", s.handleUpdateDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Post("/close", s.handleCloseDocument)
				r.Post("/clone", s.handleCloneDocument)
			})
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})

	return r
}

// logRequests writes one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type healthResponse struct {
	Status   string          `json:"status"`
	Database *database.Stats `json:"database,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.svc.Health != nil {
		if err := s.svc.Health.HealthCheck(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		stats, err := s.svc.Health.GetStats(r.Context())
		if err != nil {
			s.logger.Warn("reading database stats", "error", err)
		}
		resp.Database = stats
	}
	writeJSON(w, http.StatusOK, resp)
}
