// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/amshq/pulse/internal/domain/trend"
	"github.com/amshq/pulse/internal/domain/types"
)

// TrendDependencies defines the interface for series synthesis.
type TrendDependencies interface {
	TrendFor(ctx context.Context, id string, kind trend.Kind, periods int) (types.TrendReport, error)
}

// TrendHandler handles trend requests.
type TrendHandler struct {
	deps TrendDependencies
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(deps TrendDependencies) *TrendHandler {
	return &TrendHandler{deps: deps}
}

// HandleGetTrend handles GET /trend/{id}?metric=members&periods=6
// requests. metric defaults to members and periods to the service
// horizon.
func (h *TrendHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/trend/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	metricName := r.URL.Query().Get("metric")
	if metricName == "" {
		metricName = trend.MemberGrowth.String()
	}
	kind, err := trend.ParseKind(metricName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	periods := trend.DefaultPeriods
	if s := r.URL.Query().Get("periods"); s != "" {
		periods, err = strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}

	report, err := h.deps.TrendFor(r.Context(), id, kind, periods)
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
