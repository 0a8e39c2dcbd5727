// internal/server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/driveforge/roadnet-simulator/road"
)

const testDefinition = `{
  "name": "town01",
  "segments": [
    {"id": 1, "road_id": 1, "points": [{"x": -1}, {"x": 1}]},
    {"id": 2, "road_id": 2, "points": [{"x": 9}, {"x": 11}]},
    {"id": 3, "road_id": 2, "lane": 1, "points": [{"x": 9, "y": 4}, {"x": 11, "y": 4}]}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := road.NewMap("town01")
	if _, err := road.LoadNetworkDefinition(m, strings.NewReader(testDefinition)); err != nil {
		t.Fatalf("LoadNetworkDefinition: %v", err)
	}
	srv := httptest.NewServer(New(m, nil, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestGetRoadEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var got segmentJSON
	getJSON(t, srv.URL+"/v1/roads/2", http.StatusOK, &got)
	if got.ID != 2 {
		t.Errorf("canonical segment id = %d, want 2 (lane 0)", got.ID)
	}

	getJSON(t, srv.URL+"/v1/roads/99", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/v1/roads/notanumber", http.StatusBadRequest, nil)
}

func TestGetLanesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var lanes []segmentJSON
	getJSON(t, srv.URL+"/v1/roads/2/lanes", http.StatusOK, &lanes)
	if len(lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(lanes))
	}
	if lanes[0].ID != 2 || lanes[1].ID != 3 {
		t.Errorf("lane order = [%d %d], want [2 3]", lanes[0].ID, lanes[1].ID)
	}
}

func TestNearestEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var got nearestJSON
	getJSON(t, srv.URL+"/v1/nearest?x=1&y=0", http.StatusOK, &got)
	if got.Segment.ID != 1 {
		t.Errorf("nearest segment = %d, want 1", got.Segment.ID)
	}
	if got.Distance != 0 {
		t.Errorf("distance = %v, want 0", got.Distance)
	}

	getJSON(t, srv.URL+"/v1/nearest?x=abc&y=0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/v1/nearest?y=0", http.StatusBadRequest, nil)
}

func TestNearestEndpoint_EmptyMap(t *testing.T) {
	m := road.NewMap("empty")
	srv := httptest.NewServer(New(m, nil, nil).Routes())
	defer srv.Close()

	getJSON(t, srv.URL+"/v1/nearest?x=0&y=0", http.StatusNotFound, nil)
}

func TestGraphEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var got graphJSON
	getJSON(t, srv.URL+"/v1/graph", http.StatusOK, &got)
	if got.Name != "town01" {
		t.Errorf("graph name = %q, want town01", got.Name)
	}
	if got.Segments != 3 || got.Roads != 2 {
		t.Errorf("graph counts = %d segments / %d roads, want 3/2", got.Segments, got.Roads)
	}
	if got.Bounding == nil {
		t.Errorf("graph bounding box missing")
	}
	if len(got.Edges) != 3 {
		t.Errorf("graph edges = %d, want one entry per segment", len(got.Edges))
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/healthz", http.StatusOK, nil)
}
