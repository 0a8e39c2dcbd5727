// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/driveforge/roadnet-simulator/internal/logging"
	"github.com/driveforge/roadnet-simulator/internal/observability"
	"github.com/driveforge/roadnet-simulator/road"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Server exposes the four map operations over HTTP for out-of-process
// consumers (episode tooling, dashboards). The map itself stays the
// in-process source of truth; this surface never mutates it.
type Server struct {
	roadmap *road.Map
	log     logging.Logger
	metrics *observability.MapCollector
	tracer  trace.Tracer
}

// New constructs a Server bound to a loaded map. The collector may be nil,
// in which case /metrics is not registered.
func New(roadmap *road.Map, log logging.Logger, metrics *observability.MapCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		roadmap: roadmap,
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("roadnet/server"),
	}
}

// Routes builds the HTTP mux for the query surface.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /v1/roads/{id}", s.instrument("GetRoad", s.handleGetRoad))
	mux.Handle("GET /v1/roads/{id}/lanes", s.instrument("GetLanesForRoad", s.handleGetLanes))
	mux.Handle("GET /v1/nearest", s.instrument("NearestRoad", s.handleNearest))
	mux.Handle("GET /v1/graph", s.instrument("GetGraph", s.handleGraph))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// instrument chains request-id logging, tracing, and metrics around a
// handler for one named map operation.
func (s *Server) instrument(operation string, h http.HandlerFunc) http.Handler {
	traced := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, reqLog := logging.WithRequestLogger(r.Context(), s.log)
		ctx, span := s.tracer.Start(ctx, operation)
		defer span.End()

		start := time.Now()
		h.ServeHTTP(w, r.WithContext(ctx))
		reqLog.Debug(ctx, "map query served",
			logging.String("operation", operation),
			logging.String("path", r.URL.Path),
			logging.Any("elapsed", time.Since(start)),
		)
	})
	if s.metrics == nil {
		return traced
	}
	return s.metrics.InstrumentHandler(operation, traced)
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
