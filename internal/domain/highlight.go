package domain

import (
	"context"
	"time"
)

// Highlight is a half-open [Start, End) range over the canonical summary text
// of a news item. Offsets are counted in UTF-16 code units so they line up
// with browser selections.
type Highlight struct {
	ID        string    `json:"id" bson:"id"`
	Start     int       `json:"start" bson:"start"`
	End       int       `json:"end" bson:"end"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Len returns the length of the range in UTF-16 code units.
func (h Highlight) Len() int {
	return h.End - h.Start
}

// Valid reports whether the range is non-empty and starts at a non-negative offset.
func (h Highlight) Valid() bool {
	return h.Start >= 0 && h.Start < h.End
}

// RenderedSummary is a summary with its markdown-lite styling and highlights
// applied.
type RenderedSummary struct {
	NewsID     string        `json:"newsId"`
	Text       string        `json:"text"`
	HTML       string        `json:"html"`
	Spans      []SummarySpan `json:"spans"`
	Highlights []Highlight   `json:"highlights"`
}

// SummarySpan is one styled run of rendered summary text.
type SummarySpan struct {
	Text        string `json:"text"`
	Strong      bool   `json:"strong,omitempty"`
	Emphasis    bool   `json:"emphasis,omitempty"`
	Highlighted bool   `json:"isHighlighted"`
}

// SelectionBoundary addresses a position inside the N-th text node of a
// rendered summary, in document order.
type SelectionBoundary struct {
	Node   int `json:"node"`
	Offset int `json:"offset"`
}

// HighlightService defines the use-case operations for highlights.
type HighlightService interface {
	GetHighlights(ctx context.Context, newsID string) ([]Highlight, error)
	ReplaceHighlights(ctx context.Context, newsID string, highlights []Highlight) ([]Highlight, error)
	AddHighlight(ctx context.Context, newsID string, start, end int) ([]Highlight, <-chan error, error)
	AddSourceHighlight(ctx context.Context, newsID string, start, end int) ([]Highlight, <-chan error, error)
	AddSelection(ctx context.Context, newsID string, renderedHTML string, anchor, focus SelectionBoundary) ([]Highlight, <-chan error, error)
	ClearHighlights(ctx context.Context, newsID string) (<-chan error, error)
	RenderSummary(ctx context.Context, newsID string) (*RenderedSummary, error)
	Flush(ctx context.Context) error
}
