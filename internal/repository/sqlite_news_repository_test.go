package repository

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"research-news/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}

func newTestSQLite(t *testing.T) *SQLiteNewsRepository {
	t.Helper()
	repo, err := NewSQLiteNewsRepository(":memory:", nopLogger{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func day(d, h int) time.Time {
	return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC)
}

func seedNews(t *testing.T, repo domain.NewsRepository) []*domain.News {
	t.Helper()
	items := []*domain.News{
		{Title: "Treasury yields climb", Summary: "**Yields** rose *sharply*", Researcher: "Angel Sun", Query: "treasury yields", Date: day(25, 9)},
		{Title: "Fed holds rates", Summary: "The Fed held rates", Researcher: "Angel Sun", Query: "federal reserve", Date: day(25, 15), IsImportant: true},
		{Title: "Chip exports tighten", Summary: "New export controls", Researcher: "Marcus Lee", Query: "chip exports", Date: day(24, 12)},
		{Title: "Semiconductor earnings beat", Summary: "Earnings beat estimates", Researcher: "Marcus Lee", Query: "semiconductor earnings", Date: day(23, 8)},
	}
	n, err := repo.InsertMany(context.Background(), items)
	if err != nil {
		t.Fatalf("insert news: %v", err)
	}
	if n != len(items) {
		t.Fatalf("expected %d inserted, got %d", len(items), n)
	}
	return items
}

func titles(items []*domain.News) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.Title
	}
	return out
}

func TestSQLiteNewsRepository_InsertAssignsIDs(t *testing.T) {
	repo := newTestSQLite(t)
	items := seedNews(t, repo)

	for _, n := range items {
		if n.ID == "" {
			t.Fatal("expected id to be assigned")
		}
		if n.CreatedAt.IsZero() || n.Highlights == nil {
			t.Fatalf("expected bookkeeping fields to be set: %+v", n)
		}
	}
}

func TestSQLiteNewsRepository_ListFilters(t *testing.T) {
	repo := newTestSQLite(t)
	seedNews(t, repo)
	ctx := context.Background()
	unread := false

	tests := []struct {
		name   string
		filter domain.NewsFilter
		want   []string
	}{
		{
			name:   "default excludes important, newest first",
			filter: domain.NewsFilter{},
			want:   []string{"Treasury yields climb", "Chip exports tighten", "Semiconductor earnings beat"},
		},
		{
			name:   "important only",
			filter: domain.NewsFilter{ShowImportant: true},
			want:   []string{"Fed holds rates"},
		},
		{
			name:   "researcher",
			filter: domain.NewsFilter{Researcher: "Marcus Lee"},
			want:   []string{"Chip exports tighten", "Semiconductor earnings beat"},
		},
		{
			name:   "all researchers",
			filter: domain.NewsFilter{Researcher: domain.AllResearchers, ShowRead: &unread},
			want:   []string{"Treasury yields climb", "Chip exports tighten", "Semiconductor earnings beat"},
		},
		{
			name:   "selected day",
			filter: domain.NewsFilter{SelectedDate: "2024-05-24"},
			want:   []string{"Chip exports tighten"},
		},
		{
			name:   "search is case insensitive",
			filter: domain.NewsFilter{Search: "EXPORT"},
			want:   []string{"Chip exports tighten"},
		},
		{
			name:   "search escapes wildcards",
			filter: domain.NewsFilter{Search: "%"},
			want:   []string{},
		},
		{
			name:   "query",
			filter: domain.NewsFilter{Query: "treasury yields"},
			want:   []string{"Treasury yields climb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if got := titles(items); !slices.Equal(got, tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			if total != int64(len(tt.want)) {
				t.Fatalf("expected total %d, got %d", len(tt.want), total)
			}
		})
	}
}

func TestSQLiteNewsRepository_ListPaging(t *testing.T) {
	repo := newTestSQLite(t)
	seedNews(t, repo)

	items, total, err := repo.List(context.Background(), domain.NewsFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if got := titles(items); !slices.Equal(got, []string{"Semiconductor earnings beat"}) {
		t.Fatalf("unexpected second page %v", got)
	}
}

func TestSQLiteNewsRepository_SetRead(t *testing.T) {
	repo := newTestSQLite(t)
	items := seedNews(t, repo)
	ctx := context.Background()
	id := items[0].ID
	at := time.Date(2024, 5, 26, 10, 0, 0, 0, time.UTC)

	if err := repo.SetRead(ctx, id, true, at); err != nil {
		t.Fatalf("SetRead() error: %v", err)
	}
	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !got.IsRead || got.ReadDate == nil || !got.ReadDate.Equal(at) {
		t.Fatalf("expected read with readDate %s, got %+v", at, got)
	}
	if !got.UpdatedAt.Equal(at) {
		t.Fatalf("expected updatedAt %s, got %s", at, got.UpdatedAt)
	}

	if err := repo.SetRead(ctx, id, false, at.Add(time.Hour)); err != nil {
		t.Fatalf("SetRead() error: %v", err)
	}
	got, _ = repo.GetByID(ctx, id)
	if got.IsRead || got.ReadDate != nil {
		t.Fatalf("expected unread with cleared readDate, got %+v", got)
	}

	read := true
	readItems, _, err := repo.List(ctx, domain.NewsFilter{ShowRead: &read})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(readItems) != 0 {
		t.Fatalf("expected no read items, got %v", titles(readItems))
	}
}

func TestSQLiteNewsRepository_SetImportant(t *testing.T) {
	repo := newTestSQLite(t)
	items := seedNews(t, repo)
	ctx := context.Background()

	if err := repo.SetImportant(ctx, items[0].ID, true, time.Now()); err != nil {
		t.Fatalf("SetImportant() error: %v", err)
	}
	important, total, err := repo.List(ctx, domain.NewsFilter{ShowImportant: true})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 2 || important[0].Title != "Fed holds rates" {
		t.Fatalf("unexpected important items %v", titles(important))
	}
}

func storedHighlights(t *testing.T, repo domain.NewsRepository, id string) []domain.Highlight {
	t.Helper()
	n, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	return n.Highlights
}

func TestSQLiteNewsRepository_Highlights(t *testing.T) {
	repo := newTestSQLite(t)
	items := seedNews(t, repo)
	ctx := context.Background()
	id := items[0].ID

	got := storedHighlights(t, repo, id)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty highlights, got %v", got)
	}

	created := time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC)
	want := []domain.Highlight{
		{ID: "h1", Start: 0, End: 6, Text: "Yields", CreatedAt: created},
		{ID: "h2", Start: 12, End: 19, Text: "sharply", CreatedAt: created},
	}
	if err := repo.ReplaceHighlights(ctx, id, want, time.Now()); err != nil {
		t.Fatalf("ReplaceHighlights() error: %v", err)
	}

	got = storedHighlights(t, repo, id)
	if len(got) != 2 || got[1].ID != "h2" || got[1].Start != 12 || !got[1].CreatedAt.Equal(created) {
		t.Fatalf("unexpected highlights %+v", got)
	}

	if err := repo.ReplaceHighlights(ctx, id, nil, time.Now()); err != nil {
		t.Fatalf("ReplaceHighlights() error: %v", err)
	}
	if got = storedHighlights(t, repo, id); len(got) != 0 {
		t.Fatalf("expected cleared highlights, got %+v", got)
	}
}

func TestSQLiteNewsRepository_NotFound(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNewsNotFound) {
		t.Fatalf("GetByID: expected ErrNewsNotFound, got %v", err)
	}
	if err := repo.SetRead(ctx, "missing", true, time.Now()); !errors.Is(err, domain.ErrNewsNotFound) {
		t.Fatalf("SetRead: expected ErrNewsNotFound, got %v", err)
	}
	if err := repo.ReplaceHighlights(ctx, "missing", nil, time.Now()); !errors.Is(err, domain.ErrNewsNotFound) {
		t.Fatalf("ReplaceHighlights: expected ErrNewsNotFound, got %v", err)
	}
}

func TestSQLiteNewsRepository_Distinct(t *testing.T) {
	repo := newTestSQLite(t)
	seedNews(t, repo)
	ctx := context.Background()

	researchers, err := repo.DistinctResearchers(ctx)
	if err != nil {
		t.Fatalf("DistinctResearchers() error: %v", err)
	}
	if !slices.Equal(researchers, []string{"Angel Sun", "Marcus Lee"}) {
		t.Fatalf("unexpected researchers %v", researchers)
	}

	queries, err := repo.DistinctQueries(ctx)
	if err != nil {
		t.Fatalf("DistinctQueries() error: %v", err)
	}
	if len(queries) != 4 || queries[0] != "chip exports" {
		t.Fatalf("unexpected queries %v", queries)
	}
}

func TestSQLiteNewsRepository_FileDatabase(t *testing.T) {
	path := t.TempDir() + "/nested/news.db"

	repo, err := NewSQLiteNewsRepository(path, nopLogger{})
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	seedNews(t, repo)
	repo.Close(context.Background())

	reopened, err := NewSQLiteNewsRepository(path, nopLogger{})
	if err != nil {
		t.Fatalf("reopen sqlite file: %v", err)
	}
	defer reopened.Close(context.Background())

	_, total, err := reopened.List(context.Background(), domain.NewsFilter{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected persisted items, got total %d", total)
	}
}
