package road

import (
	"context"

	"github.com/driveforge/roadnet-simulator/internal/logging"
)

// MapMetricsRecorder receives entity-count and bound updates from the map's
// mutators, typically backed by Prometheus gauges.
type MapMetricsRecorder interface {
	SetMapCounts(segments, roads int)
	SetBoundingVolume(cubicMetres float64)
}

// MapOption customises Map construction.
type MapOption func(*Map)

// WithLogger attaches a structured logger for map-level events.
func WithLogger(log logging.Logger) MapOption {
	return func(m *Map) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetricsRecorder attaches an optional recorder for map entity counts.
func WithMetricsRecorder(rec MapMetricsRecorder) MapOption {
	return func(m *Map) {
		m.metrics = rec
	}
}

// Map is the owning façade over one road network. It is built once by the
// network loader, then shared read-only across the rest of the simulation:
// every placement and navigation consumer resolves roads through it.
//
// A map is either empty (no segments; lookups and spatial queries fail) or
// populated. There is no removal API, so the transition is one-way.
type Map struct {
	name  string
	graph *RoadGraph

	log     logging.Logger
	metrics MapMetricsRecorder
}

// NewMap constructs an empty map.
func NewMap(name string, opts ...MapOption) *Map {
	m := &Map{
		name: name,
		log:  logging.Noop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.graph = NewRoadGraph(m.log)
	m.updateMetrics()
	return m
}

// Name returns the map name assigned at construction.
func (m *Map) Name() string { return m.name }

// AddRoadSegment forwards to the graph; this is the only mutating entry
// point on the façade. It returns false when the graph rejects the segment.
func (m *Map) AddRoadSegment(seg *RoadSegment) bool {
	if !m.graph.AddRoadSegment(seg) {
		return false
	}
	m.log.Debug(context.Background(), "road segment added",
		logging.Any("segment_id", seg.ID()),
		logging.Any("road_id", seg.RoadID()),
		logging.Any("lane", seg.Lane()),
	)
	m.updateMetrics()
	return true
}

// GetRoad returns the canonical segment for a road id, or ErrRoadNotFound.
func (m *Map) GetRoad(roadID uint64) (*RoadSegment, error) {
	return m.graph.GetRoad(roadID)
}

// GetLanesForRoad returns all lane variants sharing a road id, or
// ErrRoadNotFound.
func (m *Map) GetLanesForRoad(roadID uint64) ([]*RoadSegment, error) {
	return m.graph.GetLanesForRoad(roadID)
}

// NearestRoad returns the segment closest to p, or ErrEmptyMap when the map
// holds no segments. A map never answers with a sentinel segment: a phantom
// nearest road would corrupt downstream placement.
func (m *Map) NearestRoad(p Location) (*RoadSegment, error) {
	return m.graph.NearestRoad(p)
}

// GetGraph returns a read-only view over the internally owned graph. The map
// remains the sole owner; the view shares storage rather than copying it.
func (m *Map) GetGraph() *GraphView {
	return &GraphView{graph: m.graph}
}

func (m *Map) updateMetrics() {
	if m.metrics == nil {
		return
	}
	m.metrics.SetMapCounts(m.graph.SegmentCount(), m.graph.RoadCount())
	if bounds, ok := m.graph.BoundingRect(); ok {
		m.metrics.SetBoundingVolume(bounds.Volume())
	} else {
		m.metrics.SetBoundingVolume(0)
	}
}

// GraphView is an immutable window over a RoadGraph, handed to inspection
// and path-planning consumers. All returned segments are read-only.
type GraphView struct {
	graph *RoadGraph
}

// SegmentCount returns the number of segments in the graph.
func (v *GraphView) SegmentCount() int { return v.graph.SegmentCount() }

// RoadCount returns the number of distinct road ids in the graph.
func (v *GraphView) RoadCount() int { return v.graph.RoadCount() }

// BoundingRect returns the aggregate bound and whether any segment exists.
func (v *GraphView) BoundingRect() (Rect, bool) { return v.graph.BoundingRect() }

// Segments returns a snapshot of all segments in insertion order.
func (v *GraphView) Segments() []*RoadSegment { return v.graph.Segments() }

// Segment returns the segment with the given id, or ErrSegmentNotFound.
func (v *GraphView) Segment(id SegmentID) (*RoadSegment, error) {
	return v.graph.GetSegment(id)
}

// SuccessorsOf returns the segment ids reachable from the end of the given
// segment, or ErrSegmentNotFound for an unknown id.
func (v *GraphView) SuccessorsOf(id SegmentID) ([]SegmentID, error) {
	return v.graph.SuccessorsOf(id)
}
