// Package server exposes prepared forms over HTTP: field trees for rendering
// and a submission endpoint that shapes, validates, and hands data to a Sink.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
)

const requestTimeout = 10 * time.Second

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSink sets where accepted submissions go. Defaults to LogSink.
func WithSink(sink Sink) Option {
	return func(s *Server) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithMaxMemory bounds the multipart body kept in memory.
func WithMaxMemory(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxMemory = n
		}
	}
}

// WithClock overrides the receipt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server serves the forms of a catalog.
type Server struct {
	catalog   *orchestrator.Catalog
	orch      *orchestrator.Orchestrator
	sink      Sink
	logger    *zap.Logger
	maxMemory int64
	now       func() time.Time
}

// New constructs a Server. orch must be configured with the same delimiter
// the catalog's forms were rendered with.
func New(catalog *orchestrator.Catalog, orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		catalog:   catalog,
		orch:      orch,
		logger:    zap.NewNop(),
		maxMemory: formdata.DefaultMaxMemory,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.catalog == nil {
		s.catalog = orchestrator.NewCatalog()
	}
	if s.orch == nil {
		s.orch = orchestrator.New(orchestrator.WithLogger(s.logger))
	}
	if s.sink == nil {
		s.sink = LogSink(s.logger)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		s.logRequests,
	)

	r.Get("/forms", s.handleListForms)
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetForm)
		r.Post("/submissions", s.handleSubmit)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
