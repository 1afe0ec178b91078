package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/njchilds90/allowhtml"
	"github.com/njchilds90/allowhtml/internal/comment"
	"github.com/njchilds90/allowhtml/internal/config"
	"github.com/njchilds90/allowhtml/internal/database"
	"github.com/njchilds90/allowhtml/internal/handler"
	"github.com/njchilds90/allowhtml/internal/logger"
	"github.com/njchilds90/allowhtml/internal/metrics"
	"github.com/njchilds90/allowhtml/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Run loads the configuration and runs the subcommand in args. It
// returns when ctx is cancelled and the server has shut down.
func Run(ctx context.Context, args []string) error {
	cmd := ParseCommand(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting commentbox",
		zap.String("command", string(cmd)),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, log)
	default:
		return runServe(ctx, cfg, log)
	}
}

// Server is a configured HTTP server and the resources it owns.
type Server struct {
	HTTP *http.Server

	rateLimiter *middleware.RateLimiter
	db          *sql.DB
}

// NewServer builds the store, service and router described by cfg.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	srv := &Server{}

	store, err := srv.openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	policy := allowhtml.DefaultPolicy().WithMaxDepth(cfg.SanitizeMaxDepth)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	svc := comment.NewService(store, comment.ServiceConfig{
		Policy:   policy,
		MaxBytes: cfg.CommentMaxBytes,
	}, collector, log.Named("comment"))

	srv.rateLimiter = middleware.NewRateLimiter(
		middleware.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		log.Named("ratelimit"),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Service:            svc,
		Policy:             policy,
		Logger:             log.Named("http"),
		RateLimiter:        srv.rateLimiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            metrics.Handler(reg),
	})

	srv.HTTP = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

// Close releases what NewServer acquired. It does not stop the listener.
func (s *Server) Close() error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) openStore(cfg *config.Config, log *zap.Logger) (comment.Store, error) {
	if cfg.Store != config.StorePostgres {
		log.Info("using in-memory comment store")
		return comment.NewMemoryStore(), nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	log.Info("database connection established")
	return comment.NewPostgresStore(db), nil
}

// runServe serves HTTP until ctx is cancelled, then shuts down within
// cfg.ShutdownTimeout.
func runServe(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	srv, err := NewServer(cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.HTTP.Addr))
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.HTTP.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("HTTP server stopped gracefully")
	return nil
}

// runMigrate applies all pending migrations.
func runMigrate(cfg *config.Config, log *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	log.Info("running database migrations", zap.String("database_url", maskDatabaseURL(cfg.DatabaseURL)))
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

// maskDatabaseURL hides credentials in a database URL before logging it.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
