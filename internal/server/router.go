// Package server exposes the redirect pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/probe"
	"variaredirect/internal/redirect"
	"variaredirect/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusReporter reports the latest connectivity check.
type StatusReporter interface {
	Status() probe.Status
}

// Server holds the handlers' collaborators.
type Server struct {
	Pipeline *redirect.Pipeline
	Store    contracts.Store
	Session  *session.Store
	Probe    StatusReporter
	Cookies  session.CookieSource

	// KeepAlive is the interval between keepalive lines on UI connections.
	KeepAlive time.Duration
}

// NewRouter returns a http Handler.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		// Download events
		r.Route("/downloads", func(r chi.Router) {
			r.Post("/", s.handleDownloadCreated)
			r.Get("/{id}", s.handleGetDownload)
		})

		// Settings document
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleReplaceSettings)
			r.Post("/lists/{list}", s.handleAddListItem)
			r.Delete("/lists/{list}", s.handleRemoveListItem)
		})

		// Session ephemeral state
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Post("/cookie", s.handleSetCookie)
			r.Get("/connect", s.handleConnect)
		})

		r.Post("/filters/test", s.handleTestFilter)
		r.Get("/status", s.handleStatus)
		r.Get("/notifications", s.handleListNotifications)
	})

	return r
}

// StartServer serves h on addr until ctx is cancelled.
func StartServer(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: consts.ServerReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Pl.S("Listening for download events on http://%s", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.ServerShutdownTimeout)
	defer cancel()
	logger.Pl.I("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
