package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"research-news/internal/domain"
)

func TestNewsService_ListNews(t *testing.T) {
	repo := NewMockNewsRepository(
		&domain.News{ID: "1", Researcher: "Angel Sun"},
		&domain.News{ID: "2", Researcher: "Marcus Lee"},
	)
	service := NewNewsService(repo, NewMockLogger())

	page, err := service.ListNews(context.Background(), domain.NewsFilter{
		Researcher: domain.AllResearchers,
		PageSize:   500,
	})
	if err != nil {
		t.Fatalf("ListNews() error: %v", err)
	}
	if page.Total != 2 || page.Page != 1 || page.PageSize != domain.MaxPageSize {
		t.Fatalf("unexpected page %+v", page)
	}
	if repo.lastFilter.Researcher != "" {
		t.Fatalf("expected the all sentinel to be cleared, got %q", repo.lastFilter.Researcher)
	}
}

func TestNewsService_ListNewsRejectsBadDate(t *testing.T) {
	service := NewNewsService(NewMockNewsRepository(), NewMockLogger())

	_, err := service.ListNews(context.Background(), domain.NewsFilter{SelectedDate: "25/05/2024"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "selectedDate" {
		t.Fatalf("expected selectedDate validation error, got %v", err)
	}
}

func TestNewsService_SetRead(t *testing.T) {
	repo := NewMockNewsRepository(&domain.News{ID: "1"})
	service := NewNewsService(repo, NewMockLogger())
	fixed := time.Date(2024, 5, 26, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	service.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := service.SetRead(ctx, "1", true); err != nil {
		t.Fatalf("SetRead() error: %v", err)
	}
	n, _ := repo.GetByID(ctx, "1")
	if !n.IsRead || n.ReadDate == nil || !n.ReadDate.Equal(fixed) || n.ReadDate.Location() != time.UTC {
		t.Fatalf("expected UTC readDate %s, got %+v", fixed.UTC(), n.ReadDate)
	}

	if err := service.SetImportant(ctx, "1", true); err != nil {
		t.Fatalf("SetImportant() error: %v", err)
	}
	if n, _ = repo.GetByID(ctx, "1"); !n.IsImportant {
		t.Fatal("expected item to be important")
	}

	if err := service.SetRead(ctx, "missing", true); !errors.Is(err, domain.ErrNewsNotFound) {
		t.Fatalf("expected ErrNewsNotFound, got %v", err)
	}
	if err := service.SetImportant(ctx, " ", true); !errors.Is(err, domain.ErrInvalidNewsID) {
		t.Fatalf("expected ErrInvalidNewsID, got %v", err)
	}
}

func TestNewsService_RecentDates(t *testing.T) {
	service := NewNewsService(NewMockNewsRepository(), NewMockLogger())
	service.now = func() time.Time {
		return time.Date(2024, 3, 2, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))
	}

	got := service.RecentDates(0)
	want := []string{"2024-03-03", "2024-03-02", "2024-03-01", "2024-02-29", "2024-02-28"}
	if !slices.Equal(got, want) {
		t.Fatalf("RecentDates() = %v, want %v", got, want)
	}
	if got := service.RecentDates(2); len(got) != 2 {
		t.Fatalf("expected 2 dates, got %v", got)
	}
}
