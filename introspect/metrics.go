package introspect

import (
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names in the Prometheus exposition.
const (
	// Current number of records held by the registry.
	metricRecords = "dispatchkit_registry_records"

	// Lifetime count of successful adds.
	metricAddedTotal = "dispatchkit_registry_added_total"
)

// metrics serves GET /metrics — the registry counters in Prometheus text
// exposition format.
func (h *Handler[P]) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := h.reg.Stats()
	families := []*dto.MetricFamily{
		gaugeFamily(metricRecords, "Number of in-flight records currently held.", float64(st.Size)),
		counterFamily(metricAddedTotal, "Total records added over the registry lifetime.", float64(st.Added)),
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			slog.Error("introspect: encode metric family failed", "family", mf.GetName(), "err", err)
			return
		}
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: ptr(name),
		Help: ptr(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: ptr(value)}},
		},
	}
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: ptr(name),
		Help: ptr(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: ptr(value)}},
		},
	}
}

func ptr[T any](v T) *T { return &v }
