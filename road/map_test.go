package road

import (
	"errors"
	"sync"
	"testing"

	"github.com/driveforge/roadnet-simulator/model"
)

type countsRecorder struct {
	segments int
	roads    int
	volume   float64
	calls    int
}

func (r *countsRecorder) SetMapCounts(segments, roads int) {
	r.segments = segments
	r.roads = roads
	r.calls++
}

func (r *countsRecorder) SetBoundingVolume(v float64) {
	r.volume = v
}

func TestMap_EmptyStateFailures(t *testing.T) {
	m := NewMap("empty-town")

	if _, err := m.GetRoad(1); !errors.Is(err, ErrRoadNotFound) {
		t.Errorf("GetRoad on empty map: err = %v, want ErrRoadNotFound", err)
	}
	if _, err := m.GetLanesForRoad(1); !errors.Is(err, ErrRoadNotFound) {
		t.Errorf("GetLanesForRoad on empty map: err = %v, want ErrRoadNotFound", err)
	}
	if _, err := m.NearestRoad(Location{}); !errors.Is(err, ErrEmptyMap) {
		t.Errorf("NearestRoad on empty map: err = %v, want ErrEmptyMap", err)
	}
}

func TestMap_PopulatedTransition(t *testing.T) {
	m := NewMap("town01")
	seg := straightSegment(t, 1, 10, 0, model.Coordinates{X: 0}, model.Coordinates{X: 10})

	if !m.AddRoadSegment(seg) {
		t.Fatalf("AddRoadSegment returned false")
	}

	got, err := m.GetRoad(10)
	if err != nil {
		t.Fatalf("GetRoad after insert: %v", err)
	}
	if got.ID() != 1 {
		t.Errorf("GetRoad = segment %d, want 1", got.ID())
	}

	nearest, err := m.NearestRoad(Location{X: 4, Y: 2})
	if err != nil {
		t.Fatalf("NearestRoad after insert: %v", err)
	}
	if nearest.ID() != 1 {
		t.Errorf("NearestRoad = segment %d, want 1", nearest.ID())
	}

	if m.Name() != "town01" {
		t.Errorf("Name = %q", m.Name())
	}
}

func TestMap_GetGraphView(t *testing.T) {
	m := NewMap("town02")
	a := straightSegment(t, 1, 10, 0, model.Coordinates{X: 0}, model.Coordinates{X: 10})
	b := straightSegment(t, 2, 20, 0, model.Coordinates{X: 10}, model.Coordinates{X: 20})
	m.AddRoadSegment(a)
	m.AddRoadSegment(b)

	view := m.GetGraph()
	if got := view.SegmentCount(); got != 2 {
		t.Errorf("SegmentCount = %d, want 2", got)
	}
	if got := view.RoadCount(); got != 2 {
		t.Errorf("RoadCount = %d, want 2", got)
	}

	succ, err := view.SuccessorsOf(1)
	if err != nil {
		t.Fatalf("SuccessorsOf: %v", err)
	}
	if len(succ) != 1 || succ[0] != 2 {
		t.Errorf("SuccessorsOf(1) = %v, want [2]", succ)
	}

	// The view tracks later insertions: it is a window, not a copy.
	c := straightSegment(t, 3, 30, 0, model.Coordinates{X: 100}, model.Coordinates{X: 110})
	m.AddRoadSegment(c)
	if got := view.SegmentCount(); got != 3 {
		t.Errorf("SegmentCount after insert = %d, want 3", got)
	}
}

func TestMap_MetricsRecorderDrivenByInserts(t *testing.T) {
	rec := &countsRecorder{}
	m := NewMap("town03", WithMetricsRecorder(rec))

	if rec.calls == 0 {
		t.Fatalf("recorder not initialised at construction")
	}
	if rec.segments != 0 || rec.volume != 0 {
		t.Fatalf("initial counts = %+v, want zeros", rec)
	}

	m.AddRoadSegment(straightSegment(t, 1, 10, 0,
		model.Coordinates{X: 0, Y: -1, Z: -1}, model.Coordinates{X: 10, Y: 1, Z: 1}))

	if rec.segments != 1 || rec.roads != 1 {
		t.Errorf("counts after insert = %d segments / %d roads, want 1/1", rec.segments, rec.roads)
	}
	if rec.volume <= 0 {
		t.Errorf("bounding volume = %v, want > 0", rec.volume)
	}

	// A rejected insert must not bump the counts.
	dup := straightSegment(t, 1, 99, 0, model.Coordinates{X: 50}, model.Coordinates{X: 60})
	if m.AddRoadSegment(dup) {
		t.Fatalf("duplicate insert accepted")
	}
	if rec.segments != 1 {
		t.Errorf("counts changed after rejected insert: %d", rec.segments)
	}
}

func TestMap_ConcurrentReaders(t *testing.T) {
	m := NewMap("town04")
	for id := uint64(1); id <= 20; id++ {
		seg := straightSegment(t, id, id, 0,
			model.Coordinates{X: float64(id) * 30}, model.Coordinates{X: float64(id)*30 + 20})
		if !m.AddRoadSegment(seg) {
			t.Fatalf("AddRoadSegment rejected segment %d", id)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := m.NearestRoad(Location{X: float64((w*i)%700) - 50}); err != nil {
					t.Errorf("NearestRoad: %v", err)
					return
				}
				if _, err := m.GetRoad(uint64(i%20) + 1); err != nil {
					t.Errorf("GetRoad: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
