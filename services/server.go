package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mockview-ai/backend/repository"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	store  repository.Store
	// gormRepo is set when the store is database-backed; used for health checks
	gormRepo *repository.GORMRepository

	geminiService      *GeminiService
	interviewService   *InterviewService
	transcriptService  *TranscriptService
	processingTracker  *ProcessingTracker
	feedbackService    *FeedbackService
	authService        *AuthService
	interviewEndpoints *InterviewEndpoints
	sessionEndpoints   *SessionEndpoints
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{config: config}
}

// SetStore sets the storage gateway. gormRepo may be nil when running on the
// in-memory fallback.
func (s *Server) SetStore(store repository.Store, gormRepo *repository.GORMRepository) {
	s.store = store
	s.gormRepo = gormRepo
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey)
		if s.geminiService != nil {
			slog.Info("Gemini service initialized")
		}
	} else {
		slog.Warn("Gemini API key not configured, feedback and question generation are unavailable")
	}

	var questions QuestionGenerator
	var analyzer Analyzer
	if s.geminiService != nil {
		questions = s.geminiService
		analyzer = s.geminiService
	}

	s.interviewService = NewInterviewService(s.store, questions)
	s.transcriptService = NewTranscriptService(s.store)
	s.processingTracker = NewProcessingTracker(s.store)
	s.feedbackService = NewFeedbackService(s.store, s.processingTracker, analyzer, s.config.AI.AnalysisTimeout)

	if s.config.JWT.Secret != "" {
		s.authService = NewAuthService(s.store, s.config.JWT.Secret)
		slog.Info("Authentication service initialized")
	} else {
		slog.Warn("JWT secret not configured, API routes will reject all requests")
	}

	s.interviewEndpoints = NewInterviewEndpoints(s.interviewService)
	s.sessionEndpoints = NewSessionEndpoints(s.transcriptService, s.feedbackService)

	if s.config.Database.Seed {
		if err := SeedDemoUser(context.Background(), s.store); err != nil {
			slog.Error("Failed to seed demo user", "error", err)
		}
	}

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		r.Group(func(r chi.Router) {
			if s.authService != nil {
				r.Use(s.authService.Middleware)
			} else {
				r.Use(rejectAll)
			}
			s.interviewEndpoints.RegisterRoutes(r)
			s.sessionEndpoints.RegisterRoutes(r)
		})
	})

	return r
}

// rejectAll guards the API when no JWT secret is configured.
func rejectAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Authentication is not configured", http.StatusServiceUnavailable)
	})
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "in-memory"

	if s.gormRepo != nil {
		dbStatus = "up"
		if sqlDB, err := s.gormRepo.DB().DB(); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else if err := sqlDB.PingContext(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"database": dbStatus,
	})

	slog.Info("Health check", "status", status, "database", dbStatus)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "API v1",
		"version": "1.0.0",
	})
}
