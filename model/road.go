package model

// Coordinates represents a point in 3D world space (metres).
type Coordinates struct {
	X float64
	Y float64
	Z float64
}

// RoadType classifies a road segment. The map core only stores it; speed
// policies and routing weights are applied by downstream consumers.
type RoadType string

const (
	RoadTypeUnknown     RoadType = "unknown"
	RoadTypeMotorway    RoadType = "motorway"
	RoadTypePrimary     RoadType = "primary"
	RoadTypeSecondary   RoadType = "secondary"
	RoadTypeResidential RoadType = "residential"
)

// SegmentDefinition is the loader-facing description of one road segment,
// parsed from a network definition file. The runtime representation with
// geometry queries lives in the road package.
type SegmentDefinition struct {
	ID     uint64
	RoadID uint64
	Lane   int32

	Type     RoadType
	OneWay   bool
	SpeedKmh int

	// Centerline polyline in world coordinates. Must contain at least two
	// distinct points.
	Points []Coordinates

	// Successors lists segment IDs reachable from the end of this segment.
	// Endpoint-coincidence adjacency is derived in addition to these.
	Successors []uint64
}
