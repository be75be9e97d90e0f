// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/amshq/pulse/internal/domain/benchmark"
	"github.com/amshq/pulse/internal/domain/types"
)

// PercentileDependencies defines the interface for what-if probes.
type PercentileDependencies interface {
	PercentileProbe(ctx context.Context, dim benchmark.Dimension, value float64) types.ProbeResult
}

// PercentileHandler handles percentile probe requests.
type PercentileHandler struct {
	deps PercentileDependencies
}

// NewPercentileHandler creates a new percentile handler.
func NewPercentileHandler(deps PercentileDependencies) *PercentileHandler {
	return &PercentileHandler{deps: deps}
}

// HandleGetPercentile handles GET /percentile?dimension=d&value=v
// requests: where a hypothetical value would land in the current
// population.
func (h *PercentileHandler) HandleGetPercentile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_percentile"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dim, err := benchmark.ParseDimension(r.URL.Query().Get("dimension"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PercentileProbe(r.Context(), dim, value))
}
