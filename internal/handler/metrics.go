package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/rapidread/rapidread/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "rapidread_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "rapidread_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "rapidread_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	for _, sourceType := range sortedKeys(snap.SummariesCreated) {
		writeMetric(w, "rapidread_summaries_created_total{source_type=%q} %d\n", sourceType, snap.SummariesCreated[sourceType])
	}
	writeMetric(w, "rapidread_summaries_deleted_total %d\n", snap.SummariesDeleted)

	for _, sourceType := range sortedKeys(snap.ExtractionErrors) {
		writeMetric(w, "rapidread_extraction_errors_total{source_type=%q} %d\n", sourceType, snap.ExtractionErrors[sourceType])
	}
	writeMetric(w, "rapidread_summarization_errors_total %d\n", snap.SummarizationErrors)

	writeMetric(w, "rapidread_summarize_duration_seconds_count %d\n", snap.SummarizeDurationCount)
	writeMetric(w, "rapidread_summarize_duration_seconds_sum %.6f\n", float64(snap.SummarizeDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
