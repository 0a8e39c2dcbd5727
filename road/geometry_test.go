package road

import (
	"math"
	"testing"
)

func TestDistanceToSegment_ClosestPointInterior(t *testing.T) {
	// Query above the middle of a segment along the X axis.
	p := Location{X: 5, Y: 3, Z: 0}
	got := distanceToSegment(p, Location{X: 0, Y: 0, Z: 0}, Location{X: 10, Y: 0, Z: 0})
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("distanceToSegment = %v, want 3", got)
	}
}

func TestDistanceToSegment_ClampsToEndpoints(t *testing.T) {
	a := Location{X: 0, Y: 0, Z: 0}
	b := Location{X: 10, Y: 0, Z: 0}

	// Beyond the b end: distance is to b, not the infinite line.
	p := Location{X: 13, Y: 4, Z: 0}
	if got := distanceToSegment(p, a, b); math.Abs(got-5) > 1e-9 {
		t.Errorf("distance beyond end = %v, want 5", got)
	}

	// Before the a end.
	p = Location{X: -3, Y: 4, Z: 0}
	if got := distanceToSegment(p, a, b); math.Abs(got-5) > 1e-9 {
		t.Errorf("distance before start = %v, want 5", got)
	}
}

func TestDistanceToSegment_DegeneratePoints(t *testing.T) {
	a := Location{X: 1, Y: 1, Z: 1}
	p := Location{X: 1, Y: 1, Z: 4}
	if got := distanceToSegment(p, a, a); math.Abs(got-3) > 1e-9 {
		t.Errorf("degenerate segment distance = %v, want 3", got)
	}
}

func TestLocationIsFinite(t *testing.T) {
	if !(Location{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Errorf("finite location reported as non-finite")
	}
	if (Location{X: math.NaN()}).IsFinite() {
		t.Errorf("NaN location reported as finite")
	}
	if (Location{Z: math.Inf(-1)}).IsFinite() {
		t.Errorf("infinite location reported as finite")
	}
}
