// Package api serves recommendations over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/metrics"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
)

// Recommender runs one recommendation request
type Recommender interface {
	Run(ctx context.Context, originAddress string, opts pipeline.Options) (*pipeline.Recommendation, error)
}

// SpotLister lists the spot catalog
type SpotLister interface {
	LoadSpots(ctx context.Context) ([]models.SpotProfile, error)
}

// Config configures the HTTP API
type Config struct {
	Addr string
	// RequestTimeout bounds each recommendation; a request cut short returns
	// the spots finished in time.
	RequestTimeout time.Duration
	CORSOrigins    []string
	// RateLimit is requests per minute per client IP on /api; 0 disables it.
	RateLimit int
	// CacheStats, when set, is served at /api/cache
	CacheStats func() cache.Stats
}

// Server is the HTTP API server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a server for cfg
func NewServer(cfg Config, recommender Recommender, spots SpotLister) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	h := &handler{recommender: recommender, spots: spots, timeout: cfg.RequestTimeout}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/spots", h.ListSpots)
		if cfg.CacheStats != nil {
			r.Get("/cache", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, cfg.CacheStats())
			})
		}
	})

	return &Server{
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router: router,
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	logging.Info().Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs each request with zerolog and counts it by route pattern
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		logging.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
