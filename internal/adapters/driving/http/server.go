package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/parley-labs/parley-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	conversationService driving.ConversationService
	bookingService      driving.BookingService
	indexerService      driving.IndexerService
	retrieverService    driving.RetrieverService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	Version   string
	APISecret string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	conversationService driving.ConversationService,
	bookingService driving.BookingService,
	indexerService driving.IndexerService,
	retrieverService driving.RetrieverService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		logger:              logger,
		conversationService: conversationService,
		bookingService:      bookingService,
		indexerService:      indexerService,
		retrieverService:    retrieverService,
		taskQueue:           taskQueue,
		db:                  db,
		redisClient:         redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg.APISecret)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(apiSecret string) {
	authMiddleware := NewAuthMiddleware(apiSecret)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Chat endpoints
	s.router.Handle("POST /api/v1/chat",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChat)))
	s.router.Handle("GET /api/v1/sessions/{id}/history",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleHistory)))
	s.router.Handle("DELETE /api/v1/sessions/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleResetSession)))

	// Knowledge base endpoints
	s.router.Handle("POST /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUploadDocuments)))
	s.router.Handle("GET /api/v1/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))
	s.router.Handle("POST /api/v1/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))

	// Booking endpoints
	s.router.Handle("GET /api/v1/bookings",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListBookings)))

	// Admin endpoints
	s.router.Handle("GET /api/v1/admin/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetStats)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
