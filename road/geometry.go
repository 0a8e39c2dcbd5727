package road

import "math"

// Location is a point in 3D world space (metres).
type Location struct {
	X, Y, Z float64
}

// Sub returns l - other.
func (l Location) Sub(other Location) Location {
	return Location{X: l.X - other.X, Y: l.Y - other.Y, Z: l.Z - other.Z}
}

// Dot returns the dot product of two locations treated as vectors.
func (l Location) Dot(other Location) float64 {
	return l.X*other.X + l.Y*other.Y + l.Z*other.Z
}

// Norm returns the Euclidean norm of the location treated as a vector.
func (l Location) Norm() float64 {
	return math.Sqrt(l.X*l.X + l.Y*l.Y + l.Z*l.Z)
}

// DistanceTo returns the straight-line distance between two points.
func (l Location) DistanceTo(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// IsFinite reports whether all components are finite numbers.
func (l Location) IsFinite() bool {
	return !math.IsNaN(l.X) && !math.IsInf(l.X, 0) &&
		!math.IsNaN(l.Y) && !math.IsInf(l.Y, 0) &&
		!math.IsNaN(l.Z) && !math.IsInf(l.Z, 0)
}

// distanceToSegment returns the shortest distance from p to the straight
// segment between a and b.
func distanceToSegment(p, a, b Location) float64 {
	v := b.Sub(a)
	length2 := v.Dot(v)
	if length2 == 0 {
		// Degenerate case: a and b coincide.
		return p.DistanceTo(a)
	}

	// t* minimises |a + t v - p|^2 over t ∈ [0, 1].
	t := p.Sub(a).Dot(v) / length2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Location{
		X: a.X + v.X*t,
		Y: a.Y + v.Y*t,
		Z: a.Z + v.Z*t,
	}
	return p.DistanceTo(closest)
}
