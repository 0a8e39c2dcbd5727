package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestInstrumentHandlerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMapCollector(reg)
	if err != nil {
		t.Fatalf("NewMapCollector: %v", err)
	}

	handler := collector.InstrumentHandler("NearestRoad", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/nearest?x=1&y=2", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(collector.QueryRequests.WithLabelValues("NearestRoad", "ok")); got != 1 {
		t.Fatalf("map_query_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "map_query_duration_seconds", map[string]string{
		"operation": "NearestRoad",
	}); count != 1 {
		t.Fatalf("map_query_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestInstrumentHandlerRecordsOutcomeLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMapCollector(reg)
	if err != nil {
		t.Fatalf("NewMapCollector: %v", err)
	}

	statuses := map[int]string{
		http.StatusNotFound:            "not_found",
		http.StatusBadRequest:          "bad_request",
		http.StatusInternalServerError: "error",
	}
	for status, outcome := range statuses {
		handler := collector.InstrumentHandler("GetRoad", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/roads/9", nil))

		if got := testutil.ToFloat64(collector.QueryRequests.WithLabelValues("GetRoad", outcome)); got != 1 {
			t.Fatalf("outcome %q count = %v, want 1", outcome, got)
		}
	}
}

func TestMetricsHandlerExposesMapGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewMapCollector(reg)
	if err != nil {
		t.Fatalf("NewMapCollector: %v", err)
	}
	collector.SetMapCounts(12, 4)
	collector.SetBoundingVolume(1500)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	body := rr.Body.String()
	for _, want := range []string{
		"map_road_segments 12",
		"map_roads 4",
		"map_bounding_volume_cubic_metres 1500",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewMapCollectorToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMapCollector(reg); err != nil {
		t.Fatalf("first NewMapCollector: %v", err)
	}
	if _, err := NewMapCollector(reg); err != nil {
		t.Fatalf("second NewMapCollector: %v", err)
	}
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(metric.GetLabel()))
	for _, lp := range metric.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}
