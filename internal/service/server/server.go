// Package server exposes the storage registry, partition discovery and
// the upload path over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/metrics"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// Config contains HTTP server configuration
type Config struct {
	BindAddr       string
	AdminUsername  string
	AdminPassword  string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadBytes int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:       "0.0.0.0:8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxUploadBytes: 50 * 1024 * 1024,
	}
}

// Registry is the storage target registry as seen by the admin API
type Registry interface {
	List(ctx context.Context) ([]domain.EnrichedTarget, error)
	Create(target domain.StorageTarget) (*domain.StorageTarget, error)
	Update(patch *domain.TargetPatch) (*domain.StorageTarget, error)
	Delete(id string) error
	SeedFromPartition(mountpoint string, maxGB float64) (*domain.StorageTarget, error)
}

// Discoverer lists host partitions
type Discoverer interface {
	Discover(ctx context.Context) []domain.PartitionInfo
}

// Allocator picks upload directories
type Allocator interface {
	Select(category string) (*domain.UploadTarget, error)
	Roots() []string
}

// Server represents the HTTP API server
type Server struct {
	config        *Config
	logger        *zap.Logger
	router        chi.Router
	server        *http.Server
	adminHandler  *AdminHandler
	uploadHandler *UploadHandler
}

// New creates a new HTTP server
func New(cfg *Config, registry Registry, discoverer Discoverer, allocator Allocator, fs port.FileSystem, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: cfg,
		logger: logger,
	}

	s.adminHandler = NewAdminHandler(registry, discoverer, logger)
	s.uploadHandler = NewUploadHandler(allocator, fs, cfg.MaxUploadBytes, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Health check
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin/storage", func(r chi.Router) {
		if cfg.AdminPassword != "" {
			r.Use(BasicAuthMiddleware(cfg.AdminUsername, cfg.AdminPassword, logger))
		}
		r.Get("/targets", s.adminHandler.HandleList)
		r.Post("/targets", s.adminHandler.HandleCreate)
		r.Post("/targets/seed", s.adminHandler.HandleSeed)
		r.Patch("/targets/{id}", s.adminHandler.HandleUpdate)
		r.Delete("/targets/{id}", s.adminHandler.HandleDelete)
		r.Get("/partitions", s.adminHandler.HandlePartitions)
	})

	r.Post("/api/uploads/{category}", s.uploadHandler.HandleUpload)
	r.Get("/uploads/{subdir}/{name}", s.uploadHandler.HandleServe)

	s.router = r
	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
