package handler

import (
	"context"
	"net/http"
	"sync"

	"research-news/internal/domain"
)

// MockNewsService keeps news in memory and records the last filter.
type MockNewsService struct {
	news       map[string]*domain.News
	lastFilter domain.NewsFilter
	listErr    error
}

func NewMockNewsService() *MockNewsService {
	return &MockNewsService{news: make(map[string]*domain.News)}
}

func (m *MockNewsService) ListNews(ctx context.Context, filter domain.NewsFilter) (*domain.NewsPage, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	filter = filter.Normalize()
	page := &domain.NewsPage{Page: filter.Page, PageSize: filter.PageSize}
	for _, n := range m.news {
		page.Items = append(page.Items, n)
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (m *MockNewsService) GetNews(ctx context.Context, id string) (*domain.News, error) {
	if n, ok := m.news[id]; ok {
		return n, nil
	}
	return nil, domain.ErrNewsNotFound
}

func (m *MockNewsService) SetRead(ctx context.Context, id string, isRead bool) error {
	n, ok := m.news[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.IsRead = isRead
	return nil
}

func (m *MockNewsService) SetImportant(ctx context.Context, id string, isImportant bool) error {
	n, ok := m.news[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.IsImportant = isImportant
	return nil
}

func (m *MockNewsService) Researchers(ctx context.Context) ([]string, error) {
	return []string{"ada", "grace"}, nil
}

func (m *MockNewsService) Queries(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *MockNewsService) RecentDates(days int) []string {
	dates := []string{"2024-05-09", "2024-05-08", "2024-05-07", "2024-05-06", "2024-05-05"}
	if days > 0 && days < len(dates) {
		return dates[:days]
	}
	return dates
}

// MockHighlightService returns canned results and hands out write channels
// the test resolves.
type MockHighlightService struct {
	mu         sync.Mutex
	highlights []domain.Highlight
	writeErr   error
	addErr     error
	lastStart  int
	lastEnd    int
	lastSource bool
	lastHTML   string
	selections int
}

func (m *MockHighlightService) done() <-chan error {
	ch := make(chan error, 1)
	ch <- m.writeErr
	return ch
}

func (m *MockHighlightService) GetHighlights(ctx context.Context, newsID string) ([]domain.Highlight, error) {
	if newsID == "missing" {
		return nil, domain.ErrNewsNotFound
	}
	return m.highlights, nil
}

func (m *MockHighlightService) ReplaceHighlights(ctx context.Context, newsID string, highlights []domain.Highlight) ([]domain.Highlight, error) {
	for _, h := range highlights {
		if !h.Valid() {
			return nil, domain.ErrInvalidHighlight
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highlights = highlights
	return highlights, nil
}

func (m *MockHighlightService) AddHighlight(ctx context.Context, newsID string, start, end int) ([]domain.Highlight, <-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return nil, nil, m.addErr
	}
	m.lastStart, m.lastEnd = start, end
	m.highlights = append(m.highlights, domain.Highlight{ID: "h1", Start: start, End: end})
	return m.highlights, m.done(), nil
}

func (m *MockHighlightService) AddSourceHighlight(ctx context.Context, newsID string, start, end int) ([]domain.Highlight, <-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastStart, m.lastEnd, m.lastSource = start, end, true
	m.highlights = append(m.highlights, domain.Highlight{ID: "h1", Start: start, End: end})
	return m.highlights, m.done(), nil
}

func (m *MockHighlightService) AddSelection(ctx context.Context, newsID string, renderedHTML string, anchor, focus domain.SelectionBoundary) ([]domain.Highlight, <-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastHTML = renderedHTML
	m.selections++
	m.highlights = append(m.highlights, domain.Highlight{ID: "h1", Start: anchor.Offset, End: focus.Offset})
	return m.highlights, m.done(), nil
}

func (m *MockHighlightService) ClearHighlights(ctx context.Context, newsID string) (<-chan error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highlights = nil
	return m.done(), nil
}

func (m *MockHighlightService) RenderSummary(ctx context.Context, newsID string) (*domain.RenderedSummary, error) {
	return &domain.RenderedSummary{
		NewsID: newsID,
		Text:   "Revenue grew",
		HTML:   "<strong>Revenue</strong> grew",
		Spans: []domain.SummarySpan{
			{Text: "Revenue", Strong: true},
			{Text: " grew"},
		},
	}, nil
}

func (m *MockHighlightService) Flush(ctx context.Context) error { return nil }

// MockIngestService echoes the request back as a result.
type MockIngestService struct {
	lastReq domain.IngestRequest
	err     error
}

func (m *MockIngestService) Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		Query: req.Query,
		Results: []domain.ScrapeResult{
			{Query: req.Query, Title: "Quantum chips get cheaper", URL: "https://example.com/a"},
		},
		InsertedCount: boolToInt(req.Save),
		Saved:         req.Save,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type mockAuthService struct {
	user      *domain.SupabaseUser
	err       error
	lastToken string
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// Test context helpers
func createContextWithUser(r *http.Request, user *domain.SupabaseUser) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}
