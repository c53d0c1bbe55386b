package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-news/internal/domain"
)

func newTestRouter(authMiddleware func(http.Handler) http.Handler) (http.Handler, *MockNewsService) {
	logger := NewMockHandlerLogger()
	newsService := NewMockNewsService()
	router := NewRouter(
		NewNewsHandler(newsService, logger),
		NewHighlightHandler(&MockHighlightService{}, logger),
		NewScraperHandler(&MockIngestService{}, logger),
		NewAuthHandler(),
		authMiddleware,
		[]string{"http://localhost:5173"},
		logger,
	)
	return router, newsService
}

func TestNewRouter_Health(t *testing.T) {
	router, _ := newTestRouter(NoAuth)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_Routes(t *testing.T) {
	router, newsService := newTestRouter(NoAuth)
	newsService.news["n1"] = &domain.News{ID: "n1"}

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/news", "", http.StatusOK},
		{http.MethodGet, "/api/news/n1", "", http.StatusOK},
		{http.MethodPatch, "/api/news/n1/read", `{"isRead":true}`, http.StatusOK},
		{http.MethodPatch, "/api/news/n1/important", `{"isImportant":true}`, http.StatusOK},
		{http.MethodGet, "/api/researchers", "", http.StatusOK},
		{http.MethodGet, "/api/queries", "", http.StatusOK},
		{http.MethodGet, "/api/dates", "", http.StatusOK},
		{http.MethodGet, "/api/news/n1/highlights", "", http.StatusOK},
		{http.MethodPut, "/api/news/n1/highlights", `{"highlights":[]}`, http.StatusOK},
		{http.MethodPost, "/api/news/n1/highlights", `{"start":0,"end":2}`, http.StatusAccepted},
		{http.MethodDelete, "/api/news/n1/highlights", "", http.StatusAccepted},
		{http.MethodGet, "/api/news/n1/summary", "", http.StatusOK},
		{http.MethodGet, "/api/bing-scraper?q=ai", "", http.StatusOK},
		{http.MethodPost, "/api/bing-scraper", `{"query":"ai"}`, http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.target, tt.want, rr.Code)
		}
	}
}

func TestNewRouter_RequiresAuthUnderAPI(t *testing.T) {
	authService := &mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}
	router, _ := newTestRouter(NewAuthMiddleware(authService, NewMockHandlerLogger()).Middleware)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health to skip auth, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if authService.lastToken != "good" {
		t.Errorf("expected token to be validated, got %q", authService.lastToken)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	router, _ := newTestRouter(NoAuth)

	req := httptest.NewRequest(http.MethodOptions, "/api/news/n1/read", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Errorf("expected PATCH to be allowed, got %q", got)
	}
}
