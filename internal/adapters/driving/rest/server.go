package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// Options configures the HTTP server.
type Options struct {
	// AssetDir is served under /uploads/reference-images/.
	AssetDir string

	// MaxUploadBytes bounds a reference image upload.
	MaxUploadBytes int64

	// RequestsPerSecond and Burst configure per-client rate limiting.
	// A zero rate disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// OptionsFromSettings derives server options from application settings.
func OptionsFromSettings(settings *domain.AppSettings) Options {
	return Options{
		AssetDir:          settings.Storage.ResolvedAssetDir(),
		MaxUploadBytes:    settings.Server.MaxUploadBytes(),
		RequestsPerSecond: settings.Server.RequestsPerSecond,
		Burst:             settings.Server.Burst,
	}
}

// Server is the brandlens HTTP API.
type Server struct {
	library driving.LibraryService
	search  driving.SearchService
	opts    Options
	handler http.Handler
}

// NewServer creates the HTTP API over the given services.
func NewServer(library driving.LibraryService, search driving.SearchService, opts Options) (*Server, error) {
	if library == nil {
		return nil, ErrMissingLibraryService
	}
	if search == nil {
		return nil, ErrMissingSearchService
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = domain.DefaultAppSettings().Server.MaxUploadBytes()
	}

	s := &Server{
		library: library,
		search:  search,
		opts:    opts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/reference-images", s.handleList)
	mux.HandleFunc("POST /api/reference-images", s.handleAdd)
	mux.HandleFunc("DELETE /api/reference-images/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/reference-images/search", s.handleSearch)
	mux.HandleFunc("GET /uploads/reference-images/{file}", s.handleAsset)

	s.handler = chain(mux,
		logRequests,
		newRateLimiter(opts.RequestsPerSecond, opts.Burst).middleware,
		extractPrincipal,
	)
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("Listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving %s: %w", addr, err)
	}
	return nil
}
