// Package api serves the line service over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /api/lines
//	POST   /api/lines
//	GET    /api/lines/{lineID}
//	PATCH  /api/lines/{lineID}
//	DELETE /api/lines/{lineID}
//	GET    /api/lines/{lineID}/stations
//	POST   /api/lines/{lineID}/sections
//	DELETE /api/lines/{lineID}/stations/{stationID}
//	GET    /api/lines/{lineID}/diagram.{format}
//
// Errors are returned as {"error": message, "code": CODE} with a status
// derived from the code.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/subway/pkg/render/nodelink"
	"github.com/matzehuels/subway/pkg/service"
)

// Options configures the server.
type Options struct {
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the HTTP front end of a [service.Service].
type Server struct {
	svc      *service.Service
	renderer *nodelink.Renderer
	logger   *log.Logger
	opts     Options
}

// NewServer creates a server. A nil renderer renders without caching; a
// nil logger discards output.
func NewServer(svc *service.Service, renderer *nodelink.Renderer, logger *log.Logger, opts Options) *Server {
	if renderer == nil {
		renderer = nodelink.NewRenderer(nil, nil, 0)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{svc: svc, renderer: renderer, logger: logger, opts: opts}
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/lines", func(r chi.Router) {
		r.Get("/", s.listLines)
		r.Post("/", s.createLine)
		r.Route("/{lineID}", func(r chi.Router) {
			r.Get("/", s.getLine)
			r.Patch("/", s.updateLine)
			r.Delete("/", s.deleteLine)
			r.Get("/stations", s.listStations)
			r.Delete("/stations/{stationID}", s.removeStation)
			r.Post("/sections", s.addSection)
			r.Get("/diagram.{format}", s.diagram)
		})
	})

	return r
}

// logRequests logs one line per request at debug level, or at warn level
// for server errors.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"took", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("request", kv...)
			return
		}
		s.logger.Debug("request", kv...)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to five seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
