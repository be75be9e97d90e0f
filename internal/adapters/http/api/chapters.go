// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amshq/pulse/internal/domain/dedupe"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/internal/domain/types"
)

// ChapterDependencies defines the interface for chapter intake and reads.
type ChapterDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, sub model.Submission) bool
	ListChapters(ctx context.Context) types.ChapterListing
	GetChapter(ctx context.Context, id string) (types.ChapterRecord, error)
}

// ChaptersHandler handles chapter submission and listing requests.
type ChaptersHandler struct {
	deps ChapterDependencies
}

// NewChaptersHandler creates a new chapters handler.
func NewChaptersHandler(deps ChapterDependencies) *ChaptersHandler {
	return &ChaptersHandler{deps: deps}
}

// HandleChapters handles POST /chapters and GET /chapters requests.
func (h *ChaptersHandler) HandleChapters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ChaptersHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_chapter"
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), req.toModel()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

func (h *ChaptersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ListChapters(r.Context()))
}

// HandleGetChapter handles GET /chapters/{id} requests.
func (h *ChaptersHandler) HandleGetChapter(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chapter"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/chapters/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.GetChapter(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
