package domain

import (
	"context"
	"time"
)

// News is a scraped news item assigned to a researcher.
type News struct {
	ID          string      `json:"_id" bson:"-"`
	Title       string      `json:"title" bson:"title"`
	Content     string      `json:"content" bson:"content"`
	Summary     string      `json:"summary" bson:"summary"`
	Link        string      `json:"link" bson:"link"`
	Date        time.Time   `json:"date" bson:"date"`
	Researcher  string      `json:"researcher" bson:"researcher"`
	Query       string      `json:"query,omitempty" bson:"query,omitempty"`
	IsRead      bool        `json:"isRead" bson:"isRead"`
	IsImportant bool        `json:"isImportant" bson:"isImportant"`
	ReadDate    *time.Time  `json:"readDate,omitempty" bson:"readDate,omitempty"`
	Highlights  []Highlight `json:"highlights" bson:"highlights"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// AllResearchers disables the researcher filter.
	AllResearchers = "all"
)

// NewsFilter narrows the feed. The zero value lists unimportant items of any
// researcher, read or unread.
type NewsFilter struct {
	Researcher    string
	Query         string
	Search        string
	ShowRead      *bool
	ShowImportant bool
	// SelectedDate is a YYYY-MM-DD day, matched over the whole UTC day.
	SelectedDate string
	Page         int
	PageSize     int
}

// Normalize clamps paging values and clears the "all" researcher sentinel.
func (f NewsFilter) Normalize() NewsFilter {
	if f.Researcher == AllResearchers {
		f.Researcher = ""
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset returns the zero-based index of the first item on the page.
func (f NewsFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// DayRange returns the inclusive UTC bounds of SelectedDate.
func (f NewsFilter) DayRange() (time.Time, time.Time, bool) {
	if f.SelectedDate == "" {
		return time.Time{}, time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", f.SelectedDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start := day.UTC()
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end, true
}

// NewsPage is one page of the filtered feed.
type NewsPage struct {
	Items    []*News `json:"items"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// NewsRepository defines persistence operations for news items.
type NewsRepository interface {
	List(ctx context.Context, filter NewsFilter) ([]*News, int64, error)
	GetByID(ctx context.Context, id string) (*News, error)
	SetRead(ctx context.Context, id string, isRead bool, at time.Time) error
	SetImportant(ctx context.Context, id string, isImportant bool, at time.Time) error
	ReplaceHighlights(ctx context.Context, id string, highlights []Highlight, at time.Time) error
	DistinctResearchers(ctx context.Context) ([]string, error)
	DistinctQueries(ctx context.Context) ([]string, error)
	InsertMany(ctx context.Context, items []*News) (int, error)
	Close(ctx context.Context) error
}

// NewsService defines the use-case operations for the news feed.
type NewsService interface {
	ListNews(ctx context.Context, filter NewsFilter) (*NewsPage, error)
	GetNews(ctx context.Context, id string) (*News, error)
	SetRead(ctx context.Context, id string, isRead bool) error
	SetImportant(ctx context.Context, id string, isImportant bool) error
	Researchers(ctx context.Context) ([]string, error)
	Queries(ctx context.Context) ([]string, error)
	RecentDates(days int) []string
}
