package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"research-news/internal/domain"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteNewsRepository stores news items in a local SQLite file. Times are
// kept as unix milliseconds so range filters and ordering stay numeric.
type SQLiteNewsRepository struct {
	db     *sql.DB
	logger domain.Logger
}

// NewSQLiteNewsRepository opens (and creates if needed) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteNewsRepository(path string, logger domain.Logger) (*SQLiteNewsRepository, error) {
	memory := path == ":memory:"
	if !memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A memory database lives and dies with its connection.
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	r := &SQLiteNewsRepository{db: db, logger: logger}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info("SQLite news store opened", "path", path)
	return r, nil
}

func (r *SQLiteNewsRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		date INTEGER NOT NULL,
		researcher TEXT NOT NULL DEFAULT '',
		query TEXT NOT NULL DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		is_important INTEGER NOT NULL DEFAULT 0,
		read_date INTEGER,
		highlights TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_news_date ON news(date DESC);
	CREATE INDEX IF NOT EXISTS idx_news_researcher ON news(researcher);
	CREATE INDEX IF NOT EXISTS idx_news_query ON news(query);
	`
	_, err := r.db.Exec(schema)
	return err
}

const newsColumns = `id, title, content, summary, link, date, researcher, query,
	is_read, is_important, read_date, highlights, created_at, updated_at`

// List returns one page of news matching the filter, newest first, and the
// total number of matches.
func (r *SQLiteNewsRepository) List(ctx context.Context, filter domain.NewsFilter) ([]*domain.News, int64, error) {
	filter = filter.Normalize()

	var (
		where []string
		args  []interface{}
	)
	if filter.Researcher != "" {
		where = append(where, "researcher = ?")
		args = append(args, filter.Researcher)
	}
	if filter.Query != "" {
		where = append(where, "query = ?")
		args = append(args, filter.Query)
	}
	if filter.ShowRead != nil {
		where = append(where, "is_read = ?")
		args = append(args, *filter.ShowRead)
	}
	where = append(where, "is_important = ?")
	args = append(args, filter.ShowImportant)
	if start, end, ok := filter.DayRange(); ok {
		where = append(where, "date BETWEEN ? AND ?")
		args = append(args, start.UnixMilli(), end.UnixMilli())
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM news"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %w", err)
	}

	query := "SELECT " + newsColumns + " FROM news" + clause + " ORDER BY date DESC, id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.News, 0, filter.PageSize)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate news: %w", err)
	}
	return items, total, nil
}

// GetByID returns a single item.
func (r *SQLiteNewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+newsColumns+" FROM news WHERE id = ?", id)
	n, err := scanNews(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNewsNotFound
	}
	return n, err
}

// SetRead marks an item read (stamping readDate) or unread (clearing it).
func (r *SQLiteNewsRepository) SetRead(ctx context.Context, id string, isRead bool, at time.Time) error {
	var readDate sql.NullInt64
	if isRead {
		readDate = sql.NullInt64{Int64: at.UnixMilli(), Valid: true}
	}
	return r.update(ctx, id, at, "is_read = ?, read_date = ?", isRead, readDate)
}

// SetImportant flags or unflags an item.
func (r *SQLiteNewsRepository) SetImportant(ctx context.Context, id string, isImportant bool, at time.Time) error {
	return r.update(ctx, id, at, "is_important = ?", isImportant)
}

// ReplaceHighlights overwrites the highlight set of an item.
func (r *SQLiteNewsRepository) ReplaceHighlights(ctx context.Context, id string, highlights []domain.Highlight, at time.Time) error {
	raw, err := encodeHighlights(highlights)
	if err != nil {
		return err
	}
	return r.update(ctx, id, at, "highlights = ?", raw)
}

// update sets the given columns and updated_at on one item.
func (r *SQLiteNewsRepository) update(ctx context.Context, id string, at time.Time, set string, args ...interface{}) error {
	args = append(args, at.UnixMilli(), id)

	res, err := r.db.ExecContext(ctx, "UPDATE news SET "+set+", updated_at = ? WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	if n == 0 {
		return domain.ErrNewsNotFound
	}
	return nil
}

// DistinctResearchers lists every researcher with at least one item.
func (r *SQLiteNewsRepository) DistinctResearchers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "researcher")
}

// DistinctQueries lists every query that produced at least one item.
func (r *SQLiteNewsRepository) DistinctQueries(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "query")
}

func (r *SQLiteNewsRepository) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM news WHERE %[1]s <> '' ORDER BY %[1]s", column)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// InsertMany stores new items in one transaction. Items without an ID get one.
func (r *SQLiteNewsRepository) InsertMany(ctx context.Context, items []*domain.News) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO news ("+newsColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range items {
		prepareForInsert(n, now)
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		highlights, err := encodeHighlights(n.Highlights)
		if err != nil {
			return 0, err
		}
		var readDate sql.NullInt64
		if n.ReadDate != nil {
			readDate = sql.NullInt64{Int64: n.ReadDate.UnixMilli(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			n.ID, n.Title, n.Content, n.Summary, n.Link, n.Date.UnixMilli(), n.Researcher, n.Query,
			n.IsRead, n.IsImportant, readDate, highlights, n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert news %q: %w", n.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit news: %w", err)
	}
	return len(items), nil
}

// Close closes the database.
func (r *SQLiteNewsRepository) Close(context.Context) error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNews(row rowScanner) (*domain.News, error) {
	var n domain.News
	var date, created, updated int64
	var readDate sql.NullInt64
	var highlights string
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Summary, &n.Link, &date, &n.Researcher, &n.Query,
		&n.IsRead, &n.IsImportant, &readDate, &highlights, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan news: %w", err)
	}

	n.Date = time.UnixMilli(date).UTC()
	n.CreatedAt = time.UnixMilli(created).UTC()
	n.UpdatedAt = time.UnixMilli(updated).UTC()
	if readDate.Valid {
		t := time.UnixMilli(readDate.Int64).UTC()
		n.ReadDate = &t
	}
	if n.Highlights, err = decodeHighlights(highlights); err != nil {
		return nil, err
	}
	return &n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
