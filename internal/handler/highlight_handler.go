package handler

import (
	"errors"
	"net/http"

	"research-news/internal/domain"
	"research-news/internal/highlight"

	"github.com/gorilla/mux"
)

// HighlightHandler handles highlight-related HTTP requests.
type HighlightHandler struct {
	highlightService domain.HighlightService
	logger           domain.Logger
}

func NewHighlightHandler(highlightService domain.HighlightService, logger domain.Logger) *HighlightHandler {
	return &HighlightHandler{
		highlightService: highlightService,
		logger:           logger,
	}
}

type highlightsResponse struct {
	Highlights []domain.Highlight `json:"highlights"`
	Persisted  bool               `json:"persisted"`
	Message    string             `json:"message,omitempty"`
}

// GetHighlights handles GET /api/news/{id}/highlights
func (h *HighlightHandler) GetHighlights(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	highlights, err := h.highlightService.GetHighlights(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch highlights", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"highlights": highlights})
}

type replaceHighlightsRequest struct {
	Highlights *[]domain.Highlight `json:"highlights"`
}

// ReplaceHighlights handles PUT /api/news/{id}/highlights
func (h *HighlightHandler) ReplaceHighlights(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req replaceHighlightsRequest
	if err := decodeJSON(r, &req); err != nil || req.Highlights == nil {
		writeError(w, http.StatusBadRequest, "Highlights must be an array")
		return
	}

	highlights, err := h.highlightService.ReplaceHighlights(r.Context(), id, *req.Highlights)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update highlights", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, highlightsResponse{
		Highlights: highlights,
		Persisted:  true,
		Message:    "Highlights updated successfully",
	})
}

// addHighlightRequest carries either offsets or a selection made on the
// rendered summary. Offsets are canonical unless Source is set, in which case
// they count the markers of the stored summary. A selection without HTML
// addresses the spans of GET /summary.
type addHighlightRequest struct {
	Start  *int                      `json:"start"`
	End    *int                      `json:"end"`
	Source bool                      `json:"source"`
	HTML   string                    `json:"html"`
	Anchor *domain.SelectionBoundary `json:"anchor"`
	Focus  *domain.SelectionBoundary `json:"focus"`
}

// AddHighlight handles POST /api/news/{id}/highlights. The new set is
// returned at once; with ?wait=true the response waits for the debounced
// write and reports its outcome.
func (h *HighlightHandler) AddHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req addHighlightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		highlights []domain.Highlight
		done       <-chan error
		err        error
	)
	switch {
	case req.HTML != "":
		if req.Anchor == nil || req.Focus == nil {
			writeError(w, http.StatusBadRequest, "anchor and focus are required with html")
			return
		}
		highlights, done, err = h.highlightService.AddSelection(r.Context(), id, req.HTML, *req.Anchor, *req.Focus)
	case req.Start != nil && req.End != nil && req.Source:
		highlights, done, err = h.highlightService.AddSourceHighlight(r.Context(), id, *req.Start, *req.End)
	case req.Start != nil && req.End != nil:
		highlights, done, err = h.highlightService.AddHighlight(r.Context(), id, *req.Start, *req.End)
	case req.Anchor != nil && req.Focus != nil:
		highlights, done, err = h.highlightService.AddSelection(r.Context(), id, "", *req.Anchor, *req.Focus)
	default:
		writeError(w, http.StatusBadRequest, "start and end, or anchor and focus, are required")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to add highlight", "news_id", id)
		return
	}

	h.respondPending(w, r, id, highlights, done)
}

// ClearHighlights handles DELETE /api/news/{id}/highlights
func (h *HighlightHandler) ClearHighlights(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	done, err := h.highlightService.ClearHighlights(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to clear highlights", "news_id", id)
		return
	}
	h.respondPending(w, r, id, []domain.Highlight{}, done)
}

func (h *HighlightHandler) respondPending(w http.ResponseWriter, r *http.Request, id string, highlights []domain.Highlight, done <-chan error) {
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, highlightsResponse{Highlights: highlights})
		return
	}

	select {
	case err := <-done:
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, highlightsResponse{Highlights: highlights, Persisted: true})
		case errors.Is(err, highlight.ErrSuperseded):
			writeJSON(w, http.StatusAccepted, highlightsResponse{Highlights: highlights, Message: "Superseded by a newer edit"})
		default:
			h.logger.Error("Failed to persist highlights", err, "news_id", id)
			writeError(w, http.StatusInternalServerError, "Failed to persist highlights")
		}
	case <-r.Context().Done():
		writeJSON(w, http.StatusAccepted, highlightsResponse{Highlights: highlights})
	}
}

// RenderSummary handles GET /api/news/{id}/summary
func (h *HighlightHandler) RenderSummary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rendered, err := h.highlightService.RenderSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to render summary", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}
