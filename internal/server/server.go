// Package server runs the MCP server over its supported transports.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/metrics"
)

// Version reported in the MCP handshake.
const Version = "1.0.0"

// NewMCPServer builds the bare MCP server identity; callers register tools
// on it before running a transport.
func NewMCPServer() *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{
		Name:    "mcp_server",
		Version: Version,
	}, nil)
}

// RunStdio serves MCP over stdin/stdout until the context finishes.
func RunStdio(ctx context.Context, srv *mcp.Server, logger *zap.Logger) error {
	logger.Info("serving MCP over stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// NewRouter builds the HTTP surface: the streamable MCP handler at /mcp,
// /healthz, and /metrics.
func NewRouter(srv *mcp.Server, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)
	router.Handle("/mcp", handler)
	router.Handle("/mcp/*", handler)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Debug("write healthz response", zap.Error(err))
		}
	})
	router.Handle("/metrics", metrics.Handler())
	return router
}

// RunHTTP serves MCP over streamable HTTP at /mcp, alongside /healthz and
// /metrics, until the context finishes; then it shuts down gracefully.
func RunHTTP(ctx context.Context, srv *mcp.Server, addr string, logger *zap.Logger) error {
	router := NewRouter(srv, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	}
}
