// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	repository "github.com/amshq/pulse/internal/adapters/repository"
	"github.com/amshq/pulse/internal/domain/benchmark"
	"github.com/amshq/pulse/internal/domain/dedupe"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/internal/domain/trend"
	"github.com/amshq/pulse/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Read operations expose the registered population and its analytics.
	ListChapters(ctx context.Context) types.ChapterListing
	GetChapter(ctx context.Context, id string) (types.ChapterRecord, error)
	BenchmarkChapter(ctx context.Context, id string) (types.BenchmarkReport, error)
	RankDimension(ctx context.Context, dim benchmark.Dimension, limit int) []types.Standing
	PercentileProbe(ctx context.Context, dim benchmark.Dimension, value float64) types.ProbeResult
	TrendFor(ctx context.Context, id string, kind trend.Kind, periods int) (types.TrendReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	chaptersHandler   *ChaptersHandler
	benchmarkHandler  *BenchmarkHandler
	rankingsHandler   *RankingsHandler
	trendHandler      *TrendHandler
	percentileHandler *PercentileHandler
	dashboardHandler  *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// rankings table size per request.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		chaptersHandler:   NewChaptersHandler(deps),
		benchmarkHandler:  NewBenchmarkHandler(deps),
		rankingsHandler:   NewRankingsHandler(deps, maxLimit),
		trendHandler:      NewTrendHandler(deps),
		percentileHandler: NewPercentileHandler(deps),
		dashboardHandler:  newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/chapters", MetricsMiddleware(s.chaptersHandler.HandleChapters, "chapters"))
	mux.HandleFunc("/chapters/", MetricsMiddleware(s.chaptersHandler.HandleGetChapter, "chapter"))
	mux.HandleFunc("/benchmark/", MetricsMiddleware(s.benchmarkHandler.HandleGetBenchmark, "benchmark"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/trend/", MetricsMiddleware(s.trendHandler.HandleGetTrend, "trend"))
	mux.HandleFunc("/percentile", MetricsMiddleware(s.percentileHandler.HandleGetPercentile, "percentile"))
}

// submissionRequest mirrors the OpenAPI schema for POST /chapters.
type submissionRequest struct {
	SubmissionID string         `json:"submission_id"`
	Chapter      chapterPayload `json:"chapter"`
}

type chapterPayload struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Region          string  `json:"region"`
	MemberCount     int     `json:"member_count"`
	EventCount      int     `json:"event_count"`
	EventAttendance int     `json:"event_attendance"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	RenewedMembers  int     `json:"renewed_members"`
	ExpiringMembers int     `json:"expiring_members"`
	YearsActive     int     `json:"years_active"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(s.Chapter.ID) == "":
		return errors.New("missing chapter.id")
	case strings.TrimSpace(s.Chapter.Name) == "":
		return errors.New("missing chapter.name")
	case strings.TrimSpace(s.Chapter.Region) == "":
		return errors.New("missing chapter.region")
	}
	return nil
}

func (s submissionRequest) toModel() model.Submission {
	return model.Submission{
		SubmissionID: s.SubmissionID,
		Chapter: model.Chapter{
			ID:              s.Chapter.ID,
			Name:            s.Chapter.Name,
			Region:          s.Chapter.Region,
			MemberCount:     s.Chapter.MemberCount,
			EventCount:      s.Chapter.EventCount,
			EventAttendance: s.Chapter.EventAttendance,
			AnnualRevenue:   s.Chapter.AnnualRevenue,
			RenewedMembers:  s.Chapter.RenewedMembers,
			ExpiringMembers: s.Chapter.ExpiringMembers,
			YearsActive:     s.Chapter.YearsActive,
		},
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found kinds to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, benchmark.ErrNotInPopulation)
}

// isInvalidArgument translates domain contract violations to 400.
func isInvalidArgument(err error) bool {
	return errors.Is(err, trend.ErrInvalidArgument) ||
		errors.Is(err, trend.ErrUnknownKind) ||
		errors.Is(err, benchmark.ErrInvalidArgument) ||
		errors.Is(err, benchmark.ErrUnknownDimension)
}
