package road

import (
	"fmt"
	"math"

	"github.com/driveforge/roadnet-simulator/model"
)

// SegmentID uniquely identifies one road segment across a whole map.
type SegmentID uint64

// RoadSegment is one drivable path element: a polyline centerline plus the
// identity and attributes parsed from the network definition. A segment is
// immutable once constructed; its ID is assigned at construction and never
// changes.
type RoadSegment struct {
	id     SegmentID
	roadID uint64
	lane   int32

	roadType model.RoadType
	oneWay   bool
	speedKmh int

	points []Location
	length float64
	bounds Rect

	// declaredSuccessors come straight from the definition file. The graph
	// unions these with endpoint-coincidence adjacency at insertion time.
	declaredSuccessors []SegmentID
}

// NewRoadSegment validates a definition and builds the runtime segment.
// Degenerate geometry (fewer than two points, non-finite coordinates, zero
// total length) is rejected.
func NewRoadSegment(def *model.SegmentDefinition) (*RoadSegment, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidSegment)
	}
	if len(def.Points) < 2 {
		return nil, fmt.Errorf("%w: segment %d has %d points, need at least 2", ErrInvalidSegment, def.ID, len(def.Points))
	}

	points := make([]Location, len(def.Points))
	for i, p := range def.Points {
		loc := Location{X: p.X, Y: p.Y, Z: p.Z}
		if !loc.IsFinite() {
			return nil, fmt.Errorf("%w: segment %d point %d is not finite", ErrInvalidSegment, def.ID, i)
		}
		points[i] = loc
	}

	length := 0.0
	min, max := points[0], points[0]
	for i := 1; i < len(points); i++ {
		length += points[i-1].DistanceTo(points[i])
		min.X = math.Min(min.X, points[i].X)
		min.Y = math.Min(min.Y, points[i].Y)
		min.Z = math.Min(min.Z, points[i].Z)
		max.X = math.Max(max.X, points[i].X)
		max.Y = math.Max(max.Y, points[i].Y)
		max.Z = math.Max(max.Z, points[i].Z)
	}
	if length == 0 {
		return nil, fmt.Errorf("%w: segment %d has zero length", ErrInvalidSegment, def.ID)
	}

	successors := make([]SegmentID, 0, len(def.Successors))
	for _, s := range def.Successors {
		successors = append(successors, SegmentID(s))
	}

	return &RoadSegment{
		id:                 SegmentID(def.ID),
		roadID:             def.RoadID,
		lane:               def.Lane,
		roadType:           def.Type,
		oneWay:             def.OneWay,
		speedKmh:           def.SpeedKmh,
		points:             points,
		length:             length,
		bounds:             rectFromCorners(min, max),
		declaredSuccessors: successors,
	}, nil
}

// ID returns the segment identifier.
func (s *RoadSegment) ID() SegmentID { return s.id }

// RoadID returns the road identifier shared by all lane variants of a road.
func (s *RoadSegment) RoadID() uint64 { return s.roadID }

// Lane returns the lane number within the road.
func (s *RoadSegment) Lane() int32 { return s.lane }

// Type returns the road classification.
func (s *RoadSegment) Type() model.RoadType { return s.roadType }

// OneWay reports whether the segment is one-directional.
func (s *RoadSegment) OneWay() bool { return s.oneWay }

// SpeedKmh returns the posted speed limit, zero when unknown.
func (s *RoadSegment) SpeedKmh() int { return s.speedKmh }

// Length returns the total centerline length in metres.
func (s *RoadSegment) Length() float64 { return s.length }

// Start returns the first centerline point.
func (s *RoadSegment) Start() Location { return s.points[0] }

// End returns the last centerline point.
func (s *RoadSegment) End() Location { return s.points[len(s.points)-1] }

// Points returns a copy of the centerline polyline.
func (s *RoadSegment) Points() []Location {
	out := make([]Location, len(s.points))
	copy(out, s.points)
	return out
}

// BoundingRect returns the tight axis-aligned bound of the centerline.
func (s *RoadSegment) BoundingRect() Rect { return s.bounds }

// DeclaredSuccessors returns a copy of the successor ids from the definition.
func (s *RoadSegment) DeclaredSuccessors() []SegmentID {
	out := make([]SegmentID, len(s.declaredSuccessors))
	copy(out, s.declaredSuccessors)
	return out
}

// DistanceTo returns the shortest distance from p to the segment centerline.
func (s *RoadSegment) DistanceTo(p Location) float64 {
	best := math.Inf(1)
	for i := 1; i < len(s.points); i++ {
		if d := distanceToSegment(p, s.points[i-1], s.points[i]); d < best {
			best = d
		}
	}
	return best
}

// Contains reports whether p lies within tolerance metres of the centerline.
func (s *RoadSegment) Contains(p Location, tolerance float64) bool {
	if tolerance < 0 {
		return false
	}
	// Cheap reject against the bound before walking the polyline.
	if s.bounds.DistanceTo(p) > tolerance {
		return false
	}
	return s.DistanceTo(p) <= tolerance
}
