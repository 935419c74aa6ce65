// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/igorteleutsa/taskSystem/internal/admin"
	"github.com/igorteleutsa/taskSystem/internal/auth"
	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/events"
	"github.com/igorteleutsa/taskSystem/internal/health"
	"github.com/igorteleutsa/taskSystem/internal/middleware"
	"github.com/igorteleutsa/taskSystem/internal/migrate"
	"github.com/igorteleutsa/taskSystem/internal/project"
	"github.com/igorteleutsa/taskSystem/internal/server"
	"github.com/igorteleutsa/taskSystem/internal/ticket"
	"github.com/igorteleutsa/taskSystem/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		runner, migErr := migrate.New(db.DB.DB, logger)
		if migErr != nil {
			return migErr
		}
		if migErr := runner.Up(ctx); migErr != nil {
			return migErr
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", jwtManager.Algorithm(),
		"ttl", jwtManager.TTL(),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	publisher := events.NewAMQPPublisher(cfg.RabbitMQ)
	dispatcher := events.NewDispatcher(events.DispatcherConfig{
		Events:     cfg.Events,
		Publisher:  publisher,
		Logger:     logger,
		Registerer: registry,
	})

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(auth.ServiceConfig{
		JWT:          jwtManager,
		UserProvider: userSvc,
		Revocations:  redis,
		AdminEmails:  cfg.Auth.AdminEmails,
		Logger:       logger,
	})
	authHandler := auth.NewHandler(authSvc)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(projectRepo, userSvc, logger)
	projectHandler := project.NewHandler(projectSvc)

	ticketSvc := ticket.NewService(ticket.ServiceConfig{
		Repository: ticket.NewRepository(db.DB),
		Projects:   projectSvc,
		Users:      userSvc,
		Emitter:    dispatcher,
		Logger:     logger,
	})
	ticketHandler := ticket.NewHandler(ticketSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "rabbitmq", Checker: publisher},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		BrokerPing: publisher.Ping,
		EventStats: dispatcher.Stats,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Database:      db,
		Gatherer:      registry,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.NewHTTPMetrics(registry).Handler)
	limit := middleware.Window(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Burst,
		cfg.RateLimit.Window,
	)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    limit,
			KeyFunc:  middleware.KeyByIPAndEndpoint,
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	srv.RegisterOpsRoutes()

	userLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    limit,
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	})
	verify := middleware.Authenticator(authSvc)
	authenticator := func(next http.Handler) http.Handler {
		return verify(userLimiter.Handler(next))
	}

	router.Route("/users", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
	})
	projectHandler.RegisterRoutes(router, authenticator)
	ticketHandler.RegisterRoutes(router, authenticator)
	adminHandler.RegisterRoutes(router, authenticator)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("event dispatcher shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
