// Package api exposes the HTTP interface of the ingestion service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/ingest"
	"github.com/interviewbot/jobscout/internal/ratelimit"
	"github.com/interviewbot/jobscout/internal/robots"
)

// Browser is the slice of the browser manager the handlers need.
type Browser interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*ingest.FetchResult, error)
	GeneratePDF(ctx context.Context, html string) ([]byte, error)
}

// Server wires HTTP handlers to the fetch pipeline.
type Server struct {
	router      chi.Router
	browser     Browser
	robots      *robots.Checker
	limiter     *ratelimit.Limiter
	validator   ingest.URLValidator
	blobs       ingest.BlobStore
	healthStore ingest.HealthStore
	logger      *zap.Logger
}

// NewServer constructs a Server with middleware and routes. Blobs and the
// health store may be nil; the matching features then degrade gracefully.
func NewServer(
	browser Browser,
	robotsChecker *robots.Checker,
	limiter *ratelimit.Limiter,
	validator ingest.URLValidator,
	blobs ingest.BlobStore,
	healthStore ingest.HealthStore,
	logger *zap.Logger,
) *Server {
	s := &Server{
		browser:     browser,
		robots:      robotsChecker,
		limiter:     limiter,
		validator:   validator,
		blobs:       blobs,
		healthStore: healthStore,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(120 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/fetch", s.fetchPosting)
		r.Post("/pdf", s.generatePDF)
		r.Post("/normalize", s.normalizePosting)
		r.Post("/analyze", s.analyzeSkillGap)
		r.Get("/health-report", s.healthReport)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(s.logger, w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
