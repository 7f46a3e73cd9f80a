package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/backend"
	"github.com/ekaya-inc/ekaya-console/pkg/config"
	"github.com/ekaya-inc/ekaya-console/pkg/handlers"
	"github.com/ekaya-inc/ekaya-console/pkg/logging"
	"github.com/ekaya-inc/ekaya-console/pkg/middleware"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
	"github.com/ekaya-inc/ekaya-console/pkg/session"
	"github.com/ekaya-inc/ekaya-console/pkg/store"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backendCfg := cfg.Backend
	backendCfg.URL = config.ResolveURLForDocker(backendCfg.URL)

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("backend_url", logging.SanitizeURL(backendCfg.URL)),
		zap.String("default_branch", backendCfg.DefaultBranch),
		zap.Bool("backend_token", backendCfg.APIToken != ""),
		zap.String("menu_file", cfg.Menu.File))

	trees, closeStore, err := newTreeStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client := backend.NewClient(backendCfg, logger)
	schemaService := services.NewSchemaService(client, services.DefaultSchemaTTL, logger)
	formService := services.NewFormService(client, schemaService, logger)
	treeService := services.NewTreeService(client, schemaService, trees, logger)
	menuService := services.NewMenuService(client, schemaService, cfg.Menu.File, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, client, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(schemaService, logger).RegisterRoutes(mux)
	handlers.NewFormHandler(formService, logger).RegisterRoutes(mux)
	handlers.NewTreeHandler(treeService, logger).RegisterRoutes(mux)
	handlers.NewMenuHandler(menuService, logger).RegisterRoutes(mux)

	sessions := session.NewManager(cfg.Session, logger)
	handler := middleware.Chain(mux,
		middleware.RequestLogger(logger),
		sessions.Middleware,
		middleware.ResolutionContext(backendCfg.DefaultBranch),
		middleware.ForwardToken(backendCfg.APIKeyHeader),
	)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		useTLS := cfg.TLSCertPath != "" && cfg.TLSKeyPath != ""
		logger.Info("Starting ekaya-console",
			zap.String("addr", server.Addr),
			zap.Bool("tls", useTLS))

		var err error
		if useTLS {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newTreeStore returns the Redis tree store when Redis is configured and
// the in-memory store otherwise.
func newTreeStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.TreeStore, func(), error) {
	ttl := cfg.Redis.TreeTTL()

	redisClient, err := store.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if redisClient == nil {
		logger.Info("Keeping navigation trees in memory", zap.Duration("ttl", ttl))
		return store.NewMemoryTreeStore(ttl), func() {}, nil
	}

	logger.Info("Keeping navigation trees in Redis",
		zap.String("addr", cfg.Redis.Addr()),
		zap.Duration("ttl", ttl))
	closeFn := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	return store.NewRedisTreeStore(redisClient, ttl, logger), closeFn, nil
}
