package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"research-news/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) add(line string) {
	m.mu.Lock()
	m.messages = append(m.messages, line)
	m.mu.Unlock()
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.add("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.add("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.add("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.add("WARN: " + msg)
}

func (m *MockLogger) contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.messages {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// MockNewsRepository is an in-memory news store.
type MockNewsRepository struct {
	mu           sync.Mutex
	news         map[string]*domain.News
	replaceErr   error
	insertErr    error
	replaceCalls int
	lastFilter   domain.NewsFilter
	lastAt       time.Time
	inserted     []*domain.News
}

func NewMockNewsRepository(items ...*domain.News) *MockNewsRepository {
	m := &MockNewsRepository{news: make(map[string]*domain.News)}
	for _, n := range items {
		if n.Highlights == nil {
			n.Highlights = []domain.Highlight{}
		}
		m.news[n.ID] = n
	}
	return m
}

func (m *MockNewsRepository) setReplaceErr(err error) {
	m.mu.Lock()
	m.replaceErr = err
	m.mu.Unlock()
}

func (m *MockNewsRepository) stored(id string) []domain.Highlight {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Highlight{}, m.news[id].Highlights...)
}

func (m *MockNewsRepository) replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceCalls
}

func (m *MockNewsRepository) List(ctx context.Context, filter domain.NewsFilter) ([]*domain.News, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	var out []*domain.News
	for _, n := range m.news {
		if filter.Researcher == "" || n.Researcher == filter.Researcher {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockNewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.news[id]
	if !ok {
		return nil, domain.ErrNewsNotFound
	}
	cp := *n
	cp.Highlights = append([]domain.Highlight{}, n.Highlights...)
	return &cp, nil
}

func (m *MockNewsRepository) SetRead(ctx context.Context, id string, isRead bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.news[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.IsRead = isRead
	n.ReadDate = nil
	if isRead {
		n.ReadDate = &at
	}
	m.lastAt = at
	return nil
}

func (m *MockNewsRepository) SetImportant(ctx context.Context, id string, isImportant bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.news[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.IsImportant = isImportant
	m.lastAt = at
	return nil
}

func (m *MockNewsRepository) ReplaceHighlights(ctx context.Context, id string, highlights []domain.Highlight, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	n, ok := m.news[id]
	if !ok {
		return domain.ErrNewsNotFound
	}
	n.Highlights = append([]domain.Highlight{}, highlights...)
	m.lastAt = at
	return nil
}

func (m *MockNewsRepository) DistinctResearchers(ctx context.Context) ([]string, error) {
	return []string{"Angel Sun", "Marcus Lee"}, nil
}

func (m *MockNewsRepository) DistinctQueries(ctx context.Context) ([]string, error) {
	return []string{"federal reserve"}, nil
}

func (m *MockNewsRepository) InsertMany(ctx context.Context, items []*domain.News) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, items...)
	return len(items), nil
}

func (m *MockNewsRepository) Close(ctx context.Context) error {
	return nil
}
