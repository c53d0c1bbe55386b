package handler

import (
	"fmt"
	"net/http"

	"research-news/internal/domain"
	apperrors "research-news/pkg/errors"
)

// ScraperHandler exposes on-demand Bing News scraping.
type ScraperHandler struct {
	ingestService domain.IngestService
	logger        domain.Logger
}

func NewScraperHandler(ingestService domain.IngestService, logger domain.Logger) *ScraperHandler {
	return &ScraperHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*domain.IngestResult
}

type scrapeRequest struct {
	Query      string `json:"query"`
	Researcher string `json:"researcher"`
	SaveToDB   bool   `json:"saveToDb"`
	Enrich     bool   `json:"enrich"`
}

// Search handles GET /api/bing-scraper?q=...&researcher=...&save=true
func (h *ScraperHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeError(w, http.StatusBadRequest, `Query parameter "q" is required`)
		return
	}

	h.run(w, r, domain.IngestRequest{
		Query:      q.Get("q"),
		Researcher: q.Get("researcher"),
		Save:       truthy(q.Get("save")),
		Enrich:     truthy(q.Get("enrich")),
	})
}

// SearchPost handles POST /api/bing-scraper
func (h *ScraperHandler) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required and must be a string")
		return
	}

	h.run(w, r, domain.IngestRequest{
		Query:      req.Query,
		Researcher: req.Researcher,
		Save:       req.SaveToDB,
		Enrich:     req.Enrich,
	})
}

func (h *ScraperHandler) run(w http.ResponseWriter, r *http.Request, req domain.IngestRequest) {
	result, err := h.ingestService.Run(r.Context(), req)
	if err != nil {
		if toAppError(err).Type == apperrors.ErrorTypeInternal {
			err = apperrors.NewUpstreamError("Search failed", err)
		}
		writeServiceError(w, h.logger, err, "Search failed", "query", req.Query)
		return
	}

	message := fmt.Sprintf("Found %d results for query: %s", len(result.Results), result.Query)
	if result.Saved {
		message += " (saved to database)"
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		Success:      true,
		Message:      message,
		IngestResult: result,
	})
}

func truthy(v string) bool {
	return v == "true" || v == "1"
}
