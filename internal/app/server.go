package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/markdave123-py/uloader/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/uloader/internal/api/middlewares"
	"github.com/markdave123-py/uloader/internal/config"
	"github.com/markdave123-py/uloader/internal/jobs"
	"github.com/markdave123-py/uloader/pkg/logger"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes. Job creation, cancellation and
// deletion sit behind the shared-secret header; status and result polling
// are open, matching the reference deployment.
func NewServer(cfg *config.Config, manager *jobs.Manager) *Server {
	jobHandler := handlers.NewJobHandler(manager, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "x-api-key"},
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1/jobs", func(api chi.Router) {
		// polling endpoints stay unauthenticated
		api.Get("/{jobID}", jobHandler.GetStatus)
		api.Get("/{jobID}/result", jobHandler.GetResult)

		// mutating endpoints require the shared secret
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.APIKeyMiddleware(cfg.APISecretKey))
			protected.Post("/file", jobHandler.ProcessFile)
			protected.Post("/url", jobHandler.ProcessURL)
			protected.Post("/batch", jobHandler.ProcessBatch)
			protected.Post("/{jobID}/cancel", jobHandler.Cancel)
			protected.Delete("/{jobID}", jobHandler.Delete)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log := logger.Get()
	log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Get().Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
