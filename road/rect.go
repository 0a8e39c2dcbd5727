package road

import "math"

// Extent holds the non-negative half-widths of an axis-aligned box.
type Extent struct {
	X, Y, Z float64
}

// Rect is an axis-aligned bounding box described by its center location and
// half-extent. It is a pure value: callers never mutate one, they obtain
// grown copies via the expand helpers used during graph insertion.
type Rect struct {
	location Location
	extent   Extent
}

// NewRect builds a rect from center and half-extent. Negative extent
// components are clamped to zero.
func NewRect(location Location, extent Extent) Rect {
	return Rect{location: location, extent: clampExtent(extent)}
}

// rectFromCorners builds the tightest rect enclosing the two corners.
func rectFromCorners(min, max Location) Rect {
	return Rect{
		location: Location{
			X: (min.X + max.X) / 2,
			Y: (min.Y + max.Y) / 2,
			Z: (min.Z + max.Z) / 2,
		},
		extent: Extent{
			X: math.Abs(max.X-min.X) / 2,
			Y: math.Abs(max.Y-min.Y) / 2,
			Z: math.Abs(max.Z-min.Z) / 2,
		},
	}
}

// GetLocation returns the center of the box.
func (r Rect) GetLocation() Location {
	return r.location
}

// GetExtend returns the half-extent of the box.
func (r Rect) GetExtend() Extent {
	return r.extent
}

// Min returns the minimum corner of the box.
func (r Rect) Min() Location {
	return Location{
		X: r.location.X - r.extent.X,
		Y: r.location.Y - r.extent.Y,
		Z: r.location.Z - r.extent.Z,
	}
}

// Max returns the maximum corner of the box.
func (r Rect) Max() Location {
	return Location{
		X: r.location.X + r.extent.X,
		Y: r.location.Y + r.extent.Y,
		Z: r.location.Z + r.extent.Z,
	}
}

// Contains reports whether p lies inside or on the boundary of the box.
func (r Rect) Contains(p Location) bool {
	min, max := r.Min(), r.Max()
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// ContainsRect reports whether other lies entirely within the box.
func (r Rect) ContainsRect(other Rect) bool {
	return r.Contains(other.Min()) && r.Contains(other.Max())
}

// DistanceTo returns the shortest distance from p to the box, zero when p is
// inside. Used as the coarse reject in nearest-segment search.
func (r Rect) DistanceTo(p Location) float64 {
	dx := math.Max(math.Abs(p.X-r.location.X)-r.extent.X, 0)
	dy := math.Max(math.Abs(p.Y-r.location.Y)-r.extent.Y, 0)
	dz := math.Max(math.Abs(p.Z-r.location.Z)-r.extent.Z, 0)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Union returns the smallest rect enclosing both boxes. The result always
// contains the receiver, which is what keeps the graph's aggregate bound
// monotonic under insertion.
func (r Rect) Union(other Rect) Rect {
	rMin, rMax := r.Min(), r.Max()
	oMin, oMax := other.Min(), other.Max()
	return rectFromCorners(
		Location{X: math.Min(rMin.X, oMin.X), Y: math.Min(rMin.Y, oMin.Y), Z: math.Min(rMin.Z, oMin.Z)},
		Location{X: math.Max(rMax.X, oMax.X), Y: math.Max(rMax.Y, oMax.Y), Z: math.Max(rMax.Z, oMax.Z)},
	)
}

// Volume returns the box volume in cubic metres.
func (r Rect) Volume() float64 {
	return 8 * r.extent.X * r.extent.Y * r.extent.Z
}

func clampExtent(e Extent) Extent {
	if e.X < 0 {
		e.X = 0
	}
	if e.Y < 0 {
		e.Y = 0
	}
	if e.Z < 0 {
		e.Z = 0
	}
	return e
}
