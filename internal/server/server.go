// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/health"
)

const welcomeMessage = "Welcome to the Task Tracker API!"

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler *health.Handler
	Database      health.Checker
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

type Server struct {
	router   *chi.Mux
	http     *http.Server
	health   *health.Handler
	database health.Checker
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	return &Server{
		router:   router,
		health:   cfg.HealthHandler,
		database: cfg.Database,
		gatherer: cfg.Gatherer,
		logger:   logger,
		http: &http.Server{
			Addr:              cfg.ServerConfig.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			ReadHeaderTimeout: cfg.ServerConfig.ReadTimeout,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// RegisterOpsRoutes mounts the welcome, database check, probe and metrics
// endpoints. Call it after the global middleware is installed.
func (s *Server) RegisterOpsRoutes() {
	s.router.Get("/", s.root)
	s.router.Get("/check_db", s.checkDB)

	if s.health != nil {
		s.health.RegisterRoutes(s.router)
	}

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(
			s.gatherer,
			promhttp.HandlerOpts{ErrorLog: slog.NewLogLogger(
				s.logger.Handler(), slog.LevelWarn,
			)},
		))
	}
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)

	if err := s.http.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// Shutdown flips the probes to unhealthy, waits drainDelay so load
// balancers stop routing, then stops accepting and drains connections.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetShutdown(true)
	}

	if drainDelay > 0 {
		s.logger.Info("draining before shutdown", "delay", drainDelay)
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	core.Message(w, welcomeMessage)
}

type dbCheckResponse struct {
	DatabaseStatus string `json:"database_status"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) checkDB(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		core.OK(w, dbCheckResponse{
			DatabaseStatus: "Connection failed",
			Error:          "database not configured",
		})
		return
	}

	if err := s.database.Ping(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "database check failed", "error", err)
		core.OK(w, dbCheckResponse{
			DatabaseStatus: "Connection failed",
			Error:          err.Error(),
		})
		return
	}

	core.OK(w, dbCheckResponse{DatabaseStatus: "Connection successful"})
}
