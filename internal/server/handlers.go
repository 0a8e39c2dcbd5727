// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/driveforge/roadnet-simulator/road"
)

// segmentJSON is the wire shape of one road segment.
type segmentJSON struct {
	ID       uint64       `json:"id"`
	RoadID   uint64       `json:"road_id"`
	Lane     int32        `json:"lane"`
	Type     string       `json:"type"`
	OneWay   bool         `json:"one_way"`
	SpeedKmh int          `json:"speed_kmh"`
	Length   float64      `json:"length"`
	Start    locationJSON `json:"start"`
	End      locationJSON `json:"end"`
}

type locationJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type nearestJSON struct {
	Segment  segmentJSON `json:"segment"`
	Distance float64     `json:"distance"`
}

type graphJSON struct {
	Name     string        `json:"name"`
	Segments int           `json:"segments"`
	Roads    int           `json:"roads"`
	Bounding *rectJSON     `json:"bounding,omitempty"`
	Edges    []graphEdge   `json:"edges"`
}

type graphEdge struct {
	From       uint64   `json:"from"`
	Successors []uint64 `json:"successors"`
}

type rectJSON struct {
	Location locationJSON `json:"location"`
	Extent   locationJSON `json:"extent"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (s *Server) handleGetRoad(w http.ResponseWriter, r *http.Request) {
	roadID, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	seg, err := s.roadmap.GetRoad(roadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, segmentToJSON(seg))
}

func (s *Server) handleGetLanes(w http.ResponseWriter, r *http.Request) {
	roadID, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	lanes, err := s.roadmap.GetLanesForRoad(roadID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]segmentJSON, 0, len(lanes))
	for _, seg := range lanes {
		out = append(out, segmentToJSON(seg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	loc, ok := parseLocation(w, r)
	if !ok {
		return
	}
	seg, err := s.roadmap.NearestRoad(loc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nearestJSON{
		Segment:  segmentToJSON(seg),
		Distance: seg.DistanceTo(loc),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	view := s.roadmap.GetGraph()

	out := graphJSON{
		Name:     s.roadmap.Name(),
		Segments: view.SegmentCount(),
		Roads:    view.RoadCount(),
		Edges:    make([]graphEdge, 0, view.SegmentCount()),
	}
	if bounds, populated := view.BoundingRect(); populated {
		loc, ext := bounds.GetLocation(), bounds.GetExtend()
		out.Bounding = &rectJSON{
			Location: locationJSON{X: loc.X, Y: loc.Y, Z: loc.Z},
			Extent:   locationJSON{X: ext.X, Y: ext.Y, Z: ext.Z},
		}
	}
	for _, seg := range view.Segments() {
		succ, err := view.SuccessorsOf(seg.ID())
		if err != nil {
			continue
		}
		ids := make([]uint64, 0, len(succ))
		for _, id := range succ {
			ids = append(ids, uint64(id))
		}
		out.Edges = append(out.Edges, graphEdge{From: uint64(seg.ID()), Successors: ids})
	}
	writeJSON(w, http.StatusOK, out)
}

func segmentToJSON(seg *road.RoadSegment) segmentJSON {
	start, end := seg.Start(), seg.End()
	return segmentJSON{
		ID:       uint64(seg.ID()),
		RoadID:   seg.RoadID(),
		Lane:     seg.Lane(),
		Type:     string(seg.Type()),
		OneWay:   seg.OneWay(),
		SpeedKmh: seg.SpeedKmh(),
		Length:   seg.Length(),
		Start:    locationJSON{X: start.X, Y: start.Y, Z: start.Z},
		End:      locationJSON{X: end.X, Y: end.Y, Z: end.Z},
	}
}

func parseID(w http.ResponseWriter, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "id must be an unsigned integer"})
		return 0, false
	}
	return id, true
}

func parseLocation(w http.ResponseWriter, r *http.Request) (road.Location, bool) {
	q := r.URL.Query()
	var loc road.Location
	for _, part := range []struct {
		name string
		dst  *float64
	}{
		{"x", &loc.X},
		{"y", &loc.Y},
		{"z", &loc.Z},
	} {
		raw := q.Get(part.name)
		if raw == "" {
			// z is optional; x and y are required.
			if part.name == "z" {
				continue
			}
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "missing query parameter " + part.name})
			return road.Location{}, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid query parameter " + part.name})
			return road.Location{}, false
		}
		*part.dst = v
	}
	if !loc.IsFinite() {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "coordinates must be finite"})
		return road.Location{}, false
	}
	return loc, true
}

// writeError maps map-core sentinel errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, road.ErrRoadNotFound),
		errors.Is(err, road.ErrSegmentNotFound):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
	case errors.Is(err, road.ErrEmptyMap):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
