package road

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/driveforge/roadnet-simulator/model"
)

// NetworkSummary is a small summary of what was loaded from JSON. It's
// mainly useful for logging from main().
type NetworkSummary struct {
	Name       string
	SegmentIDs []SegmentID
	Loaded     int
	Rejected   int
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type networkDefinitionJSON struct {
	Name     string        `json:"name"`
	Segments []segmentJSON `json:"segments"`
}

type segmentJSON struct {
	ID         uint64      `json:"id"`
	RoadID     uint64      `json:"road_id"`
	Lane       int32       `json:"lane"`
	Type       string      `json:"type"`     // see roadTypeFromString
	OneWay     bool        `json:"one_way"`
	SpeedKmh   int         `json:"speed_kmh"`
	Points     []pointJSON `json:"points"`
	Successors []uint64    `json:"successors"`
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadNetworkDefinition reads a JSON road-network definition from r and adds
// every segment to the map.
//
// It fails only on JSON / structural errors, which abort map construction.
// Per-segment problems (degenerate geometry, duplicate ids) are counted as
// rejects and loading continues, matching AddRoadSegment's recoverable
// contract for the loader.
func LoadNetworkDefinition(m *Map, r io.Reader) (*NetworkSummary, error) {
	if m == nil {
		return nil, fmt.Errorf("LoadNetworkDefinition: map is nil")
	}

	var payload networkDefinitionJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadNetworkDefinition: decode failed: %w", err)
	}

	summary := &NetworkSummary{
		Name:       payload.Name,
		SegmentIDs: make([]SegmentID, 0, len(payload.Segments)),
	}

	for _, js := range payload.Segments {
		def := &model.SegmentDefinition{
			ID:         js.ID,
			RoadID:     js.RoadID,
			Lane:       js.Lane,
			Type:       roadTypeFromString(js.Type),
			OneWay:     js.OneWay,
			SpeedKmh:   js.SpeedKmh,
			Points:     make([]model.Coordinates, 0, len(js.Points)),
			Successors: js.Successors,
		}
		for _, p := range js.Points {
			def.Points = append(def.Points, model.Coordinates{X: p.X, Y: p.Y, Z: p.Z})
		}

		seg, err := NewRoadSegment(def)
		if err != nil {
			summary.Rejected++
			continue
		}
		if !m.AddRoadSegment(seg) {
			summary.Rejected++
			continue
		}
		summary.Loaded++
		summary.SegmentIDs = append(summary.SegmentIDs, seg.ID())
	}

	return summary, nil
}

// roadTypeFromString maps the JSON "type" string to our RoadType constants.
//
// We keep this tolerant: unknown / empty values fall back to
// RoadTypeUnknown so that definitions from other tools still load.
func roadTypeFromString(s string) model.RoadType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motorway", "highway", "freeway":
		return model.RoadTypeMotorway
	case "primary", "trunk":
		return model.RoadTypePrimary
	case "secondary", "tertiary":
		return model.RoadTypeSecondary
	case "residential", "street", "local":
		return model.RoadTypeResidential
	default:
		return model.RoadTypeUnknown
	}
}
