package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gitchest/gitchest/internal/metrics"
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

	writeMetric(w, "gitchest_user_cache_hits_total %d\n", snap.UserCacheHits)
	writeMetric(w, "gitchest_user_cache_misses_total %d\n", snap.UserCacheMisses)
	writeMetric(w, "gitchest_user_fetch_duration_seconds_count %d\n", snap.UserFetchCount)
	writeMetric(w, "gitchest_user_fetch_duration_seconds_sum %.6f\n", float64(snap.UserFetchTotalNs)/1e9)

	writeMetric(w, "gitchest_users_added_total %d\n", snap.UsersAdded)
	writeMetric(w, "gitchest_users_removed_total %d\n", snap.UsersRemoved)

	levels := make([]string, 0, len(snap.ToastsEmitted))
	for level := range snap.ToastsEmitted {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		writeMetric(w, "gitchest_toasts_total{level=%q} %d\n", level, snap.ToastsEmitted[level])
	}
	writeMetric(w, "gitchest_toasts_dropped_total %d\n", snap.ToastsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
