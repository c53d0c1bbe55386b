package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"research-news/internal/domain"
)

// prepareForInsert fills the bookkeeping fields of a freshly scraped item.
func prepareForInsert(n *domain.News, now time.Time) {
	if n.Date.IsZero() {
		n.Date = now
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}
	if n.Highlights == nil {
		n.Highlights = []domain.Highlight{}
	}
	n.Title = removeNullBytes(n.Title)
	n.Content = removeNullBytes(n.Content)
	n.Summary = removeNullBytes(n.Summary)
}

// removeNullBytes strips NUL characters, which Postgres rejects in text
// columns and scraped pages occasionally contain.
func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func encodeHighlights(highlights []domain.Highlight) (string, error) {
	if highlights == nil {
		highlights = []domain.Highlight{}
	}
	raw, err := json.Marshal(highlights)
	if err != nil {
		return "", fmt.Errorf("failed to encode highlights: %w", err)
	}
	return string(raw), nil
}

func decodeHighlights(raw string) ([]domain.Highlight, error) {
	highlights := []domain.Highlight{}
	if raw == "" || raw == "null" {
		return highlights, nil
	}
	if err := json.Unmarshal([]byte(raw), &highlights); err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %w", err)
	}
	return highlights, nil
}
