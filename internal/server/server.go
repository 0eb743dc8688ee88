package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"photo-loader/internal/photos"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

// Server renders the catalog's resources over HTTP: 202 while loading, 200
// with the content on success, 502 on failure. DELETE offloads.
type Server struct {
	logger     *zap.SugaredLogger
	catalog    *photos.Catalog
	httpServer *http.Server
}

func NewServer(logger *zap.SugaredLogger, catalog *photos.Catalog, addr string, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		logger:  logger,
		catalog: catalog,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(s.routes(gatherer), "photo-loader"),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/authors", func(r chi.Router) {
		r.Get("/", s.getAuthors)
		r.Delete("/", s.offloadAuthors)
	})

	r.Route("/photos/{id}", func(r chi.Router) {
		r.Get("/", s.getFullSize)
		r.Delete("/", s.offloadFullSize)
		r.Get("/thumbnail", s.getThumbnail)
		r.Delete("/thumbnail", s.offloadThumbnail)
	})

	return r
}

// Start blocks serving until Stop.
func (s *Server) Start() error {
	s.logger.Infow("Listening", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(started),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}
