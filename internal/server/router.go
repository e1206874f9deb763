// Package server exposes the relay over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/metrics"
	"github.com/danielolaszy/sentry-relay/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// IssueLookup resolves and fetches a single issue.
type IssueLookup interface {
	LookupIssue(ctx context.Context, idOrURL string) (*models.IssueResponse, error)
}

// TokenStore holds the Sentry auth token set through /config.
type TokenStore interface {
	Set(token string)
	Configured() bool
}

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	Lookup  IssueLookup
	Tokens  TokenStore
	Metrics *metrics.Metrics

	// RequestTimeout bounds each request; zero disables the timeout.
	RequestTimeout time.Duration
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// Version is reported by /health.
	Version string
}

// NewRouter builds the relay's HTTP routes:
//
//	POST /config        set the Sentry auth token
//	GET  /config        report whether a token is set
//	POST /sentry/issue  look up an issue
//	GET  /health        liveness
//	GET  /metrics       Prometheus metrics
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := &handler{
		lookup:  cfg.Lookup,
		tokens:  cfg.Tokens,
		version: cfg.Version,
		now:     time.Now,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Metrics))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(CORS(CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		AllowCredentials: true,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", h.health)
	r.Post("/config", h.setConfig)
	r.Get("/config", h.getConfig)
	r.Post("/sentry/issue", h.getIssue)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
