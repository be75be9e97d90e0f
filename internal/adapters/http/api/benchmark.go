// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/amshq/pulse/internal/domain/types"
)

// BenchmarkDependencies defines the interface for benchmark composition.
type BenchmarkDependencies interface {
	BenchmarkChapter(ctx context.Context, id string) (types.BenchmarkReport, error)
}

// BenchmarkHandler handles benchmark report requests.
type BenchmarkHandler struct {
	deps BenchmarkDependencies
}

// NewBenchmarkHandler creates a new benchmark handler.
func NewBenchmarkHandler(deps BenchmarkDependencies) *BenchmarkHandler {
	return &BenchmarkHandler{deps: deps}
}

// HandleGetBenchmark handles GET /benchmark/{id} requests.
func (h *BenchmarkHandler) HandleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_benchmark"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/benchmark/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	report, err := h.deps.BenchmarkChapter(r.Context(), id)
	if err != nil {
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		case isInvalidArgument(err):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}
