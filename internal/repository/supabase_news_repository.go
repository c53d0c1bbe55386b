package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"research-news/internal/domain"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const supabaseNewsTable = "news"

// SupabaseNewsRepository stores news items in a Supabase (PostgREST) table.
type SupabaseNewsRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseNewsRepository creates a news repository over an initialized
// Supabase client.
func NewSupabaseNewsRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseNewsRepository {
	return &SupabaseNewsRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

type supabaseNewsRow struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Summary     string             `json:"summary"`
	Link        string             `json:"link"`
	Date        time.Time          `json:"date"`
	Researcher  string             `json:"researcher"`
	Query       string             `json:"query"`
	IsRead      bool               `json:"is_read"`
	IsImportant bool               `json:"is_important"`
	ReadDate    *time.Time         `json:"read_date"`
	Highlights  []domain.Highlight `json:"highlights"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newSupabaseNewsRow(n *domain.News) supabaseNewsRow {
	return supabaseNewsRow{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Summary:     n.Summary,
		Link:        n.Link,
		Date:        n.Date.UTC(),
		Researcher:  n.Researcher,
		Query:       n.Query,
		IsRead:      n.IsRead,
		IsImportant: n.IsImportant,
		ReadDate:    n.ReadDate,
		Highlights:  n.Highlights,
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
	}
}

func (row supabaseNewsRow) toDomain() *domain.News {
	highlights := row.Highlights
	if highlights == nil {
		highlights = []domain.Highlight{}
	}
	return &domain.News{
		ID:          row.ID,
		Title:       row.Title,
		Content:     row.Content,
		Summary:     row.Summary,
		Link:        row.Link,
		Date:        row.Date,
		Researcher:  row.Researcher,
		Query:       row.Query,
		IsRead:      row.IsRead,
		IsImportant: row.IsImportant,
		ReadDate:    row.ReadDate,
		Highlights:  highlights,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (r *SupabaseNewsRepository) table() (*postgrest.QueryBuilder, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("%w: supabase client not initialized", domain.ErrStorageUnavailable)
	}
	return client.From(supabaseNewsTable), nil
}

// List returns one page of news matching the filter, newest first.
func (r *SupabaseNewsRepository) List(_ context.Context, filter domain.NewsFilter) ([]*domain.News, int64, error) {
	filter = filter.Normalize()
	table, err := r.table()
	if err != nil {
		return nil, 0, err
	}

	q := table.Select("*", "exact", false).
		Eq("is_important", fmt.Sprint(filter.ShowImportant))
	if filter.Researcher != "" {
		q = q.Eq("researcher", filter.Researcher)
	}
	if filter.Query != "" {
		q = q.Eq("query", filter.Query)
	}
	if filter.ShowRead != nil {
		q = q.Eq("is_read", fmt.Sprint(*filter.ShowRead))
	}
	// Gte and Lte on one column share a params key, so the day range goes
	// through a single and=() group.
	if start, end, ok := filter.DayRange(); ok {
		q = q.And(fmt.Sprintf("date.gte.%s,date.lte.%s", start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano)), "")
	}
	if term := postgrestTerm(filter.Search); term != "" {
		q = q.Or(fmt.Sprintf(`title.ilike."*%[1]s*",summary.ilike."*%[1]s*"`, term), "")
	}

	from := filter.Offset()
	data, count, err := q.
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Range(from, from+filter.PageSize-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", err)
	}

	var rows []supabaseNewsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := make([]*domain.News, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, count, nil
}

// postgrestTerm removes characters that would break out of a quoted
// PostgREST filter value.
func postgrestTerm(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '*', '(', ')', ',':
			return -1
		}
		return r
	}, s))
}

// GetByID returns a single item.
func (r *SupabaseNewsRepository) GetByID(_ context.Context, id string) (*domain.News, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidNewsID
	}
	table, err := r.table()
	if err != nil {
		return nil, err
	}

	data, _, err := table.Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	var rows []supabaseNewsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNewsNotFound
	}
	return rows[0].toDomain(), nil
}

// SetRead marks an item read (stamping read_date) or unread (nulling it).
func (r *SupabaseNewsRepository) SetRead(_ context.Context, id string, isRead bool, at time.Time) error {
	var readDate *time.Time
	if isRead {
		t := at.UTC()
		readDate = &t
	}
	return r.update(id, map[string]interface{}{
		"is_read":    isRead,
		"read_date":  readDate,
		"updated_at": at.UTC(),
	})
}

// SetImportant flags or unflags an item.
func (r *SupabaseNewsRepository) SetImportant(_ context.Context, id string, isImportant bool, at time.Time) error {
	return r.update(id, map[string]interface{}{
		"is_important": isImportant,
		"updated_at":   at.UTC(),
	})
}

// ReplaceHighlights overwrites the highlight set of an item.
func (r *SupabaseNewsRepository) ReplaceHighlights(_ context.Context, id string, highlights []domain.Highlight, at time.Time) error {
	if highlights == nil {
		highlights = []domain.Highlight{}
	}
	return r.update(id, map[string]interface{}{
		"highlights": highlights,
		"updated_at": at.UTC(),
	})
}

func (r *SupabaseNewsRepository) update(id string, fields map[string]interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidNewsID
	}
	table, err := r.table()
	if err != nil {
		return err
	}

	// Request "representation" so an unknown id shows up as an empty result.
	data, _, err := table.Update(fields, "representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return domain.ErrNewsNotFound
	}
	return nil
}

// DistinctResearchers lists every researcher with at least one item.
func (r *SupabaseNewsRepository) DistinctResearchers(_ context.Context) ([]string, error) {
	return r.distinct("researcher")
}

// DistinctQueries lists every query that produced at least one item.
func (r *SupabaseNewsRepository) DistinctQueries(_ context.Context) ([]string, error) {
	return r.distinct("query")
}

// distinct de-duplicates client side; PostgREST has no DISTINCT.
func (r *SupabaseNewsRepository) distinct(column string) ([]string, error) {
	table, err := r.table()
	if err != nil {
		return nil, err
	}
	data, _, err := table.Select(column, "", false).Neq(column, "").Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[column].(string); ok && v != "" {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return slices.Compact(values), nil
}

// InsertMany stores new items in one request.
func (r *SupabaseNewsRepository) InsertMany(_ context.Context, items []*domain.News) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	table, err := r.table()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rows := make([]supabaseNewsRow, len(items))
	for i, n := range items {
		prepareForInsert(n, now)
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		rows[i] = newSupabaseNewsRow(n)
	}

	data, _, err := table.Insert(rows, false, "", "representation", "").Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to insert news: %w", err)
	}
	var inserted []map[string]interface{}
	if err := json.Unmarshal(data, &inserted); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	r.logger.Info("News inserted into Supabase", "count", len(inserted))
	return len(inserted), nil
}

// Close is a no-op; the HTTP client holds no connection to release.
func (r *SupabaseNewsRepository) Close(context.Context) error {
	return nil
}
