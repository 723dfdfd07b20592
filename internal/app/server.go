// Package app wires configuration, a storage adapter, and the HTTP
// transport into a runnable server, and owns the process's graceful
// shutdown sequence.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/api"
	"github.com/relsearch/search-service/internal/config"
	"github.com/relsearch/search-service/internal/storage"
	"github.com/relsearch/search-service/internal/storage/mysql"
	"github.com/relsearch/search-service/internal/storage/postgres"
)

// Server owns the HTTP listener and the storage adapter's lifecycle. The
// reactive/WAL push subsystem this lineage's earlier service had is gone:
// this server model is strictly request/response.
type Server struct {
	httpServer *http.Server
	storage    storage.Storage
	logger     *zap.Logger
}

// closer is satisfied by storage adapters that hold a connection pool
// whose Close cannot fail (e.g. a pgx pool).
type closer interface {
	Close()
}

// closerErr is satisfied by storage adapters whose Close can fail (e.g. a
// database/sql pool).
type closerErr interface {
	Close() error
}

// NewServer builds the configured storage adapter and the HTTP server
// that serves requests against it.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("app: build storage adapter: %w", err)
	}

	handler := api.SetupRoutes(store, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: handler,
		},
		storage: store,
		logger:  logger,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Backend {
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			ConnString:  cfg.PostgresConnString(),
			Schemas:     cfg.AllowedSchemas,
			SyntaxGuard: cfg.SyntaxGuard,
			CatalogTTL:  cfg.CatalogTTL,
		}, logger)
	case "mysql":
		return mysql.Open(mysql.Config{
			DSN:     cfg.MySQLDSN(),
			Schemas: cfg.AllowedSchemas,
		}, logger)
	default:
		return nil, fmt.Errorf("app: unknown backend %q", cfg.Backend)
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests and releases the storage adapter.
func (s *Server) Run() error {
	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	s.closeStorage()
	return nil
}

func (s *Server) closeStorage() {
	if c, ok := s.storage.(closer); ok {
		c.Close()
		return
	}
	if c, ok := s.storage.(closerErr); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn("storage close failed", zap.Error(err))
		}
	}
}
