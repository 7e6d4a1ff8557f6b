package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/service"
)

// Service is the application surface the HTTP API exposes.
type Service interface {
	SubmitFeedback(ctx context.Context, userID uuid.UUID, req service.FeedbackRequest) (consolidate.Result, error)
	ExtractExpertise(ctx context.Context, transcript string) (*service.ExpertiseResult, error)
	AddExpertise(ctx context.Context, userID uuid.UUID, items []string) (consolidate.Result, error)
	CreateContent(ctx context.Context, userID uuid.UUID, req service.ContentRequest) (string, error)
	PreviewPrompt(ctx context.Context, userID uuid.UUID, req service.ContentRequest) (string, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router   *chi.Mux
	port     int
	svc      Service
	db       Pinger
	validate *validator.Validate
	logger   *slog.Logger
	srv      *http.Server
}

// NewServer builds the router. db may be nil, in which case /health only
// reports that the process is up.
func NewServer(port int, svc Service, auth *Authenticator, db Pinger, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		svc:      svc,
		db:       db,
		validate: newValidator(),
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Post("/feedback", s.submitFeedback)
		r.Post("/content", s.createContent)
		r.Post("/prompt/preview", s.previewPrompt)
		r.Post("/expertise/extract", s.extractExpertise)
		r.Post("/expertise", s.addExpertise)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health check: database unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
