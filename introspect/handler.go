package introspect

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dispatchkit/dispatchkit/registry"
)

// Handler serves the /introspect/v1/* endpoints and /metrics for one
// registry. It never mutates the registry.
type Handler[P any] struct {
	reg *registry.Store[P]
	mux *http.ServeMux
}

// NewHandler creates a Handler wired to reg and registers all routes.
func NewHandler[P any](reg *registry.Store[P]) http.Handler {
	h := &Handler[P]{reg: reg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/introspect/v1/health", h.health)
	h.mux.HandleFunc("/introspect/v1/records", h.listRecords)
	h.mux.HandleFunc("/introspect/v1/records/", h.getRecord) // subtree — extracts {id}
	h.mux.HandleFunc("/introspect/v1/stats", h.stats)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler[P]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /introspect/v1/health — liveness plus the record count.
func (h *Handler[P]) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Records int    `json:"records"`
	}{Status: "ok", Records: h.reg.Stats().Size})
}

// listRecords returns GET /introspect/v1/records — the full ordered snapshot.
func (h *Handler[P]) listRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, buildSnapshot(h.reg))
}

// getRecord returns GET /introspect/v1/records/{id} — a single record.
func (h *Handler[P]) getRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/introspect/v1/records/")
	if id == "" {
		h.listRecords(w, r)
		return
	}

	rec, ok := h.reg.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "record not found")
		return
	}
	jsonResp(w, http.StatusOK, toRecordResponse(rec))
}

// stats returns GET /introspect/v1/stats — current size and lifetime adds.
func (h *Handler[P]) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	st := h.reg.Stats()
	jsonResp(w, http.StatusOK, StatsResponse{Size: st.Size, Added: st.Added})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
