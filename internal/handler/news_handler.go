// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"research-news/internal/domain"

	"github.com/gorilla/mux"
)

// NewsHandler serves the research news feed.
type NewsHandler struct {
	newsService domain.NewsService
	logger      domain.Logger
}

func NewNewsHandler(newsService domain.NewsService, logger domain.Logger) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
		logger:      logger,
	}
}

// ListNews handles GET /api/news
func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	filter, err := parseNewsFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.newsService.ListNews(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch news")
		return
	}
	if page.Items == nil {
		page.Items = make([]*domain.News, 0)
	}
	writeJSON(w, http.StatusOK, page)
}

func parseNewsFilter(q url.Values) (domain.NewsFilter, error) {
	filter := domain.NewsFilter{
		Researcher:    q.Get("researcher"),
		Query:         q.Get("query"),
		Search:        strings.TrimSpace(q.Get("q")),
		ShowImportant: q.Get("showImportant") == "true",
		SelectedDate:  q.Get("selectedDate"),
	}

	switch v := q.Get("showRead"); v {
	case "", "all":
	default:
		showRead, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &domain.ValidationError{Field: "showRead", Message: "must be true, false or all"}
		}
		filter.ShowRead = &showRead
	}

	var err error
	if filter.Page, err = intParam(q, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = intParam(q, "pageSize"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return n, nil
}

// GetNews handles GET /api/news/{id}
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	news, err := h.newsService.GetNews(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch news", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

type setReadRequest struct {
	IsRead *bool `json:"isRead"`
}

// SetRead handles PATCH /api/news/{id}/read. A missing isRead means true.
func (h *NewsHandler) SetRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req setReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	isRead := true
	if req.IsRead != nil {
		isRead = *req.IsRead
	}

	if err := h.newsService.SetRead(r.Context(), id, isRead); err != nil {
		writeServiceError(w, h.logger, err, "Failed to update read status", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "isRead": isRead})
}

type setImportantRequest struct {
	IsImportant *bool `json:"isImportant"`
}

// SetImportant handles PATCH /api/news/{id}/important
func (h *NewsHandler) SetImportant(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req setImportantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IsImportant == nil {
		writeError(w, http.StatusBadRequest, "isImportant is required")
		return
	}

	if err := h.newsService.SetImportant(r.Context(), id, *req.IsImportant); err != nil {
		writeServiceError(w, h.logger, err, "Failed to update importance", "news_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "isImportant": *req.IsImportant})
}

// Researchers handles GET /api/researchers
func (h *NewsHandler) Researchers(w http.ResponseWriter, r *http.Request) {
	researchers, err := h.newsService.Researchers(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch researchers")
		return
	}
	if researchers == nil {
		researchers = []string{}
	}
	writeJSON(w, http.StatusOK, researchers)
}

// Queries handles GET /api/queries
func (h *NewsHandler) Queries(w http.ResponseWriter, r *http.Request) {
	queries, err := h.newsService.Queries(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch queries")
		return
	}
	if queries == nil {
		queries = []string{}
	}
	writeJSON(w, http.StatusOK, queries)
}

// Dates handles GET /api/dates
func (h *NewsHandler) Dates(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r.URL.Query(), "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.newsService.RecentDates(days))
}
