package introspect

import (
	"time"

	"github.com/dispatchkit/dispatchkit/registry"
)

// RecordResponse is the JSON representation of one in-flight record.
type RecordResponse struct {
	ID         string `json:"id"`
	DeadlineMS int64  `json:"deadline_ms"`
	ExpiresAt  string `json:"expires_at"`
	Payload    any    `json:"payload,omitempty"`
}

// StatsResponse mirrors registry.Stats.
type StatsResponse struct {
	Size  int    `json:"size"`
	Added uint64 `json:"added"`
}

// SnapshotResponse is the full dump sent by /introspect/v1/records and the
// websocket hub. Records are in ascending deadline order.
type SnapshotResponse struct {
	Records     []RecordResponse `json:"records"`
	Stats       StatsResponse    `json:"stats"`
	GeneratedAt string           `json:"generated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toRecordResponse maps a registry record to its JSON representation.
func toRecordResponse[P any](r registry.Record[P]) RecordResponse {
	return RecordResponse{
		ID:         r.ID,
		DeadlineMS: r.Deadline,
		ExpiresAt:  time.UnixMilli(r.Deadline).UTC().Format(time.RFC3339),
		Payload:    r.Payload,
	}
}

// buildSnapshot assembles the current registry view.
func buildSnapshot[P any](reg *registry.Store[P]) SnapshotResponse {
	recs := reg.List()
	out := make([]RecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordResponse(r))
	}
	st := reg.Stats()
	return SnapshotResponse{
		Records:     out,
		Stats:       StatsResponse{Size: st.Size, Added: st.Added},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
