// Package server exposes the birth-rate and accident views over HTTP for a
// browser map front end.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/korea-atlas/internal/accident"
	"github.com/sells-group/korea-atlas/internal/loader"
)

// Options configures a Server.
type Options struct {
	UploadMaxBytes  int64    // default 32 MiB
	UploadPerMinute int      // default 6
	AllowedOrigins  []string // default any
}

// Server serves dataset views. The active accident table is the configured
// file until an upload replaces it.
type Server struct {
	loader   *loader.Loader
	maxBytes int64
	limiter  *rate.Limiter
	origins  []string

	mu     sync.RWMutex
	upload *loader.Upload
}

// New creates a Server backed by l.
func New(l *loader.Loader, opts Options) *Server {
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = 32 << 20
	}
	if opts.UploadPerMinute <= 0 {
		opts.UploadPerMinute = 6
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		loader:   l,
		maxBytes: opts.UploadMaxBytes,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.UploadPerMinute)), opts.UploadPerMinute),
		origins:  opts.AllowedOrigins,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/birth", func(r chi.Router) {
		r.Get("/regions.geojson", s.handleBirthRegions)
		r.Get("/table", s.handleBirthTable)
		r.Get("/diff", s.handleBirthDiff)
		r.Get("/map.png", s.handleBirthMap)
	})

	r.Route("/bike", func(r chi.Router) {
		r.Get("/options", s.handleBikeOptions)
		r.Get("/provinces.geojson", s.handleBikeProvinces)
		r.Get("/counts", s.handleBikeCounts)
		r.Get("/series", s.handleBikeSeries)
		r.Get("/breakdown", s.handleBikeBreakdown)
		r.Get("/charts/{name}.png", s.handleBikeChart)
		r.Get("/export.xlsx", s.handleBikeExport)
		r.Post("/upload", s.handleBikeUpload)
		r.Delete("/upload", s.handleBikeUploadReset)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  s.loader.CacheStats(),
	})
}

// accidents returns the active accident table and where it came from.
func (s *Server) accidents(ctx context.Context) ([]accident.Record, string, error) {
	s.mu.RLock()
	u := s.upload
	s.mu.RUnlock()
	if u != nil {
		return u.Rows, u.ID, nil
	}
	rows, err := s.loader.Accidents(ctx)
	return rows, "default", err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
