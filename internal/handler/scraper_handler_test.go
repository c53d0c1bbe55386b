package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-news/internal/domain"
)

func TestScraperHandler_Search(t *testing.T) {
	ingest := &MockIngestService{}
	handler := NewScraperHandler(ingest, NewMockHandlerLogger())

	req := httptest.NewRequest("GET", "/api/bing-scraper?q=quantum+chips&researcher=ada&save=1", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ingest.lastReq.Query != "quantum chips" || ingest.lastReq.Researcher != "ada" || !ingest.lastReq.Save {
		t.Errorf("unexpected ingest request: %+v", ingest.lastReq)
	}
	if ingest.lastReq.Enrich {
		t.Error("expected enrich to default to false")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["success"] != true {
		t.Errorf("expected success, got %v", payload["success"])
	}
	if payload["message"] != "Found 1 results for query: quantum chips (saved to database)" {
		t.Errorf("unexpected message: %v", payload["message"])
	}
	data, ok := payload["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("expected one result in data, got %v", payload["data"])
	}
	if payload["insertedCount"] != float64(1) {
		t.Errorf("expected insertedCount 1, got %v", payload["insertedCount"])
	}
}

func TestScraperHandler_Search_MissingQuery(t *testing.T) {
	handler := NewScraperHandler(&MockIngestService{}, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	handler.Search(rr, httptest.NewRequest("GET", "/api/bing-scraper", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `\"q\" is required`) {
		t.Errorf("unexpected response body: %s", rr.Body.String())
	}
}

func TestScraperHandler_SearchPost(t *testing.T) {
	ingest := &MockIngestService{}
	handler := NewScraperHandler(ingest, NewMockHandlerLogger())

	body := `{"query":"fusion","researcher":"grace","saveToDb":false,"enrich":true}`
	rr := httptest.NewRecorder()
	handler.SearchPost(rr, httptest.NewRequest("POST", "/api/bing-scraper", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ingest.lastReq.Query != "fusion" || ingest.lastReq.Save || !ingest.lastReq.Enrich {
		t.Errorf("unexpected ingest request: %+v", ingest.lastReq)
	}
	if !strings.Contains(rr.Body.String(), `"message":"Found 1 results for query: fusion"`) {
		t.Errorf("unexpected response body: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.SearchPost(rr, httptest.NewRequest("POST", "/api/bing-scraper", strings.NewReader(`{"query":""}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestScraperHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", &domain.ValidationError{Field: "researcher", Message: "required when saving"}, http.StatusBadRequest},
		{"upstream", errors.New("search failed: HTTP error: 429"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewScraperHandler(&MockIngestService{err: tt.err}, NewMockHandlerLogger())

			rr := httptest.NewRecorder()
			handler.Search(rr, httptest.NewRequest("GET", "/api/bing-scraper?q=x&save=true", nil))
			if rr.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
		})
	}
}
