package introspect_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"

	"github.com/dispatchkit/dispatchkit/introspect"
	"github.com/dispatchkit/dispatchkit/registry"
)

type payload struct {
	Pattern string `json:"pattern"`
}

func newRegistry(t *testing.T) *registry.Store[payload] {
	t.Helper()
	reg := registry.New[payload](registry.Options{})
	add := func(id string, deadline int64) {
		if err := reg.Add(registry.Record[payload]{
			ID:       id,
			Deadline: deadline,
			Payload:  payload{Pattern: "kind:task"},
		}); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	add("op-late", 2000)
	add("op-early", 1000)
	return reg
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestListRecords_OrderedSnapshot(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/introspect/v1/records")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var snap introspect.SnapshotResponse
	decode(t, resp, &snap)

	if len(snap.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(snap.Records))
	}
	if snap.Records[0].ID != "op-early" || snap.Records[1].ID != "op-late" {
		t.Errorf("order: got [%s %s], want [op-early op-late]",
			snap.Records[0].ID, snap.Records[1].ID)
	}
	if snap.Stats.Size != 2 || snap.Stats.Added != 2 {
		t.Errorf("stats: got %+v, want Size=2 Added=2", snap.Stats)
	}
}

func TestGetRecord(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/introspect/v1/records/op-early")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var rec introspect.RecordResponse
	decode(t, resp, &rec)
	if rec.ID != "op-early" || rec.DeadlineMS != 1000 {
		t.Errorf("record: got %+v", rec)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/introspect/v1/records/unknown")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/introspect/v1/stats")
	var st introspect.StatsResponse
	decode(t, resp, &st)
	if st.Size != 2 || st.Added != 2 {
		t.Errorf("stats: got %+v, want Size=2 Added=2", st)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/introspect/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status  string `json:"status"`
		Records int    `json:"records"`
	}
	decode(t, resp, &body)
	if body.Status != "ok" || body.Records != 2 {
		t.Errorf("health: got %+v", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/introspect/v1/records", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestMetrics_Exposition(t *testing.T) {
	srv := httptest.NewServer(introspect.NewHandler(newRegistry(t)))
	defer srv.Close()

	resp := get(t, srv, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}

	records, ok := mfs["dispatchkit_registry_records"]
	if !ok {
		t.Fatal("missing dispatchkit_registry_records family")
	}
	if got := records.GetMetric()[0].GetGauge().GetValue(); got != 2 {
		t.Errorf("records gauge: got %v, want 2", got)
	}

	added, ok := mfs["dispatchkit_registry_added_total"]
	if !ok {
		t.Fatal("missing dispatchkit_registry_added_total family")
	}
	if got := added.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("added counter: got %v, want 2", got)
	}
}
