package service

import (
	"context"
	"strings"
	"time"

	"research-news/internal/domain"
)

const defaultRecentDays = 5

type NewsService struct {
	repo   domain.NewsRepository
	logger domain.Logger
	now    func() time.Time
}

func NewNewsService(repo domain.NewsRepository, logger domain.Logger) *NewsService {
	return &NewsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ListNews returns one page of the filtered feed, newest first.
func (s *NewsService) ListNews(ctx context.Context, filter domain.NewsFilter) (*domain.NewsPage, error) {
	filter = filter.Normalize()
	filter.SelectedDate = strings.TrimSpace(filter.SelectedDate)
	if filter.SelectedDate != "" {
		if _, _, ok := filter.DayRange(); !ok {
			return nil, &domain.ValidationError{Field: "selectedDate", Message: "must be a YYYY-MM-DD date"}
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.NewsPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *NewsService) GetNews(ctx context.Context, id string) (*domain.News, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidNewsID
	}
	return s.repo.GetByID(ctx, id)
}

// SetRead marks an item read or unread. Reading stamps readDate; unreading
// clears it.
func (s *NewsService) SetRead(ctx context.Context, id string, isRead bool) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidNewsID
	}
	if err := s.repo.SetRead(ctx, id, isRead, s.now().UTC()); err != nil {
		return err
	}
	s.logger.Info("News read status updated", "news_id", id, "is_read", isRead)
	return nil
}

func (s *NewsService) SetImportant(ctx context.Context, id string, isImportant bool) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidNewsID
	}
	if err := s.repo.SetImportant(ctx, id, isImportant, s.now().UTC()); err != nil {
		return err
	}
	s.logger.Info("News importance updated", "news_id", id, "is_important", isImportant)
	return nil
}

func (s *NewsService) Researchers(ctx context.Context) ([]string, error) {
	return s.repo.DistinctResearchers(ctx)
}

func (s *NewsService) Queries(ctx context.Context) ([]string, error) {
	return s.repo.DistinctQueries(ctx)
}

// RecentDates returns the last days UTC dates as YYYY-MM-DD, today first.
func (s *NewsService) RecentDates(days int) []string {
	if days <= 0 {
		days = defaultRecentDays
	}
	today := s.now().UTC()
	dates := make([]string, days)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, -i).Format("2006-01-02")
	}
	return dates
}
