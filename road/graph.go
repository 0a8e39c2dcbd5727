package road

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/driveforge/roadnet-simulator/internal/logging"
)

var (
	// ErrRoadNotFound indicates a road id with no segments in the graph.
	ErrRoadNotFound = errors.New("road not found")
	// ErrSegmentNotFound indicates an unknown segment id.
	ErrSegmentNotFound = errors.New("segment not found")
	// ErrEmptyMap indicates a spatial query against a map with no segments.
	ErrEmptyMap = errors.New("map has no road segments")
	// ErrInvalidSegment indicates a definition with degenerate geometry.
	ErrInvalidSegment = errors.New("invalid road segment")
)

// endpointEpsilon is the coincidence tolerance, in metres, under which two
// segment endpoints are considered connected.
const endpointEpsilon = 0.1

// RoadGraph owns every RoadSegment of one map. Segments live in an
// insertion-ordered arena and are indexed three ways: uniquely by segment id,
// as a multimap by road id (lane variants share a road id), and spatially
// through a uniform grid for nearest-segment search. The aggregate bounding
// rect only ever grows.
//
// A RWMutex serializes the build phase against readers; once loading is done
// the graph is effectively immutable and queries contend only on the read
// lock.
type RoadGraph struct {
	mu sync.RWMutex

	// segments is the arena; indices are stable for the graph's lifetime.
	segments []*RoadSegment
	byID     map[SegmentID]int
	byRoad   map[uint64][]int

	// successors holds the union of declared and endpoint-derived adjacency.
	successors map[SegmentID][]SegmentID

	// startAt / endAt map quantized endpoint keys to arena indices, so
	// endpoint-coincidence adjacency stays O(1) per insertion.
	startAt map[endpointKey][]int
	endAt   map[endpointKey][]int

	index *gridIndex

	bounds    Rect
	hasBounds bool

	log logging.Logger
}

// NewRoadGraph constructs an empty graph with a trivial bounding box.
func NewRoadGraph(log logging.Logger) *RoadGraph {
	if log == nil {
		log = logging.Noop()
	}
	return &RoadGraph{
		byID:       make(map[SegmentID]int),
		byRoad:     make(map[uint64][]int),
		successors: make(map[SegmentID][]SegmentID),
		startAt:    make(map[endpointKey][]int),
		endAt:      make(map[endpointKey][]int),
		index:      newGridIndex(defaultCellSize),
		log:        log,
	}
}

// AddRoadSegment inserts a segment, growing the bounding box and all
// indexes. It returns false when the segment is nil or its id is already
// present; the caller (typically the network loader) may skip and continue.
func (g *RoadGraph) AddRoadSegment(seg *RoadSegment) bool {
	if seg == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byID[seg.id]; exists {
		g.log.Debug(context.Background(), "rejecting duplicate road segment",
			logging.Any("segment_id", seg.id))
		return false
	}

	idx := len(g.segments)
	g.segments = append(g.segments, seg)
	g.byID[seg.id] = idx
	g.byRoad[seg.roadID] = append(g.byRoad[seg.roadID], idx)
	g.index.insert(idx, seg.bounds)

	if g.hasBounds {
		g.bounds = g.bounds.Union(seg.bounds)
	} else {
		g.bounds = seg.bounds
		g.hasBounds = true
	}

	g.linkLocked(idx, seg)
	return true
}

// linkLocked records declared successors and derives endpoint-coincidence
// adjacency against previously inserted segments.
func (g *RoadGraph) linkLocked(idx int, seg *RoadSegment) {
	for _, succ := range seg.declaredSuccessors {
		g.addSuccessorLocked(seg.id, succ)
	}

	startKey := quantize(seg.Start())
	endKey := quantize(seg.End())

	// Segments ending where this one starts feed into it.
	for _, k := range neighborKeys(startKey) {
		for _, other := range g.endAt[k] {
			o := g.segments[other]
			if o.End().DistanceTo(seg.Start()) <= endpointEpsilon {
				g.addSuccessorLocked(o.id, seg.id)
			}
		}
	}
	// Segments starting where this one ends are reachable from it.
	for _, k := range neighborKeys(endKey) {
		for _, other := range g.startAt[k] {
			o := g.segments[other]
			if o.Start().DistanceTo(seg.End()) <= endpointEpsilon {
				g.addSuccessorLocked(seg.id, o.id)
			}
		}
	}

	g.startAt[startKey] = append(g.startAt[startKey], idx)
	g.endAt[endKey] = append(g.endAt[endKey], idx)
}

func (g *RoadGraph) addSuccessorLocked(from, to SegmentID) {
	if from == to {
		return
	}
	for _, existing := range g.successors[from] {
		if existing == to {
			return
		}
	}
	g.successors[from] = append(g.successors[from], to)
}

// GetRoad returns the canonical segment for a road id: the lane variant with
// the lowest lane number, ties broken by lowest segment id.
func (g *RoadGraph) GetRoad(roadID uint64) (*RoadSegment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idxs := g.byRoad[roadID]
	if len(idxs) == 0 {
		return nil, ErrRoadNotFound
	}

	best := g.segments[idxs[0]]
	for _, i := range idxs[1:] {
		s := g.segments[i]
		if s.lane < best.lane || (s.lane == best.lane && s.id < best.id) {
			best = s
		}
	}
	return best, nil
}

// GetLanesForRoad returns every lane variant sharing the road id, ordered by
// lane number then segment id. Callers must treat the segments as read-only.
func (g *RoadGraph) GetLanesForRoad(roadID uint64) ([]*RoadSegment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idxs := g.byRoad[roadID]
	if len(idxs) == 0 {
		return nil, ErrRoadNotFound
	}

	lanes := make([]*RoadSegment, 0, len(idxs))
	for _, i := range idxs {
		lanes = append(lanes, g.segments[i])
	}
	sort.Slice(lanes, func(a, b int) bool {
		if lanes[a].lane != lanes[b].lane {
			return lanes[a].lane < lanes[b].lane
		}
		return lanes[a].id < lanes[b].id
	})
	return lanes, nil
}

// GetSegment returns the segment carrying the given segment id.
func (g *RoadGraph) GetSegment(id SegmentID) (*RoadSegment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.byID[id]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	return g.segments[idx], nil
}

// SuccessorsOf returns the ids of segments reachable from the end of the
// given segment, in deterministic ascending order.
func (g *RoadGraph) SuccessorsOf(id SegmentID) ([]SegmentID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.byID[id]; !ok {
		return nil, ErrSegmentNotFound
	}
	succ := g.successors[id]
	out := make([]SegmentID, len(succ))
	copy(out, succ)
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}

// NearestRoad returns the segment minimizing point-to-segment distance to p,
// with equidistant candidates resolved to the lowest segment id.
func (g *RoadGraph) NearestRoad(p Location) (*RoadSegment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.segments) == 0 {
		return nil, ErrEmptyMap
	}

	idx, dist := g.index.nearest(p, g.segments)
	if idx < 0 || math.IsInf(dist, 1) {
		// The index covers every inserted segment, so this is unreachable
		// while the arena is non-empty.
		return nil, ErrEmptyMap
	}
	return g.segments[idx], nil
}

// SegmentCount returns the number of segments in the graph.
func (g *RoadGraph) SegmentCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.segments)
}

// RoadCount returns the number of distinct road ids in the graph.
func (g *RoadGraph) RoadCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byRoad)
}

// BoundingRect returns the aggregate bound and whether any segment exists.
func (g *RoadGraph) BoundingRect() (Rect, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bounds, g.hasBounds
}

// Segments returns a snapshot slice of all segments in insertion order.
// Callers must treat the segments as read-only.
func (g *RoadGraph) Segments() []*RoadSegment {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*RoadSegment, len(g.segments))
	copy(out, g.segments)
	return out
}

// endpointKey quantizes an endpoint onto an epsilon-sized lattice.
type endpointKey struct {
	X, Y, Z int64
}

func quantize(l Location) endpointKey {
	return endpointKey{
		X: int64(math.Floor(l.X / endpointEpsilon)),
		Y: int64(math.Floor(l.Y / endpointEpsilon)),
		Z: int64(math.Floor(l.Z / endpointEpsilon)),
	}
}

// neighborKeys returns the 27 lattice cells around k; coincident endpoints
// within epsilon always land in one of them.
func neighborKeys(k endpointKey) []endpointKey {
	keys := make([]endpointKey, 0, 27)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				keys = append(keys, endpointKey{X: k.X + dx, Y: k.Y + dy, Z: k.Z + dz})
			}
		}
	}
	return keys
}
