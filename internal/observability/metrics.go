package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MapCollector bundles Prometheus metrics for the map query surface and
// provides helpers to wire them into HTTP handlers.
type MapCollector struct {
	gatherer prometheus.Gatherer

	QueryRequests  *prometheus.CounterVec
	QueryDurations *prometheus.HistogramVec

	MapSegments       prometheus.Gauge
	MapRoads          prometheus.Gauge
	MapBoundingVolume prometheus.Gauge
}

// NewMapCollector registers map Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewMapCollector(reg prometheus.Registerer) (*MapCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "map_query_requests_total",
		Help: "Total number of handled map queries, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})
	requests, err := registerCounterVec(reg, requests, "map_query_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "map_query_duration_seconds",
		Help:    "Map query latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}, []string{"operation"})
	durations, err = registerHistogramVec(reg, durations, "map_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	segments, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "map_road_segments",
		Help: "Current number of road segments in the map.",
	}), "map_road_segments")
	if err != nil {
		return nil, err
	}
	roads, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "map_roads",
		Help: "Current number of distinct road ids in the map.",
	}), "map_roads")
	if err != nil {
		return nil, err
	}
	volume, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "map_bounding_volume_cubic_metres",
		Help: "Volume of the aggregate bounding box of the map.",
	}), "map_bounding_volume_cubic_metres")
	if err != nil {
		return nil, err
	}

	return &MapCollector{
		gatherer:          gatherer,
		QueryRequests:     requests,
		QueryDurations:    durations,
		MapSegments:       segments,
		MapRoads:          roads,
		MapBoundingVolume: volume,
	}, nil
}

// Observe records one completed query for the given operation and outcome.
func (c *MapCollector) Observe(operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.QueryRequests != nil {
		c.QueryRequests.WithLabelValues(operation, outcome).Inc()
	}
	if c.QueryDurations != nil {
		c.QueryDurations.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// InstrumentHandler wraps an HTTP handler so that its requests are counted
// and timed under the given operation label. The outcome label is derived
// from the response status class.
func (c *MapCollector) InstrumentHandler(operation string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.Observe(operation, outcomeFromStatus(sw.status), time.Since(start))
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MapCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetMapCounts satisfies the road.MapMetricsRecorder interface so the Map
// can drive gauge values directly from its mutators.
func (c *MapCollector) SetMapCounts(segments, roads int) {
	if c == nil {
		return
	}
	if c.MapSegments != nil {
		c.MapSegments.Set(float64(segments))
	}
	if c.MapRoads != nil {
		c.MapRoads.Set(float64(roads))
	}
}

// SetBoundingVolume records the aggregate bounding-box volume.
func (c *MapCollector) SetBoundingVolume(cubicMetres float64) {
	if c == nil || c.MapBoundingVolume == nil {
		return
	}
	c.MapBoundingVolume.Set(cubicMetres)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func outcomeFromStatus(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "ok"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 400 && status < 500:
		return "bad_request"
	default:
		return "error"
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
