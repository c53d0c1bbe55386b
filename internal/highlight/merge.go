// Package highlight maintains user highlights over the canonical text of a
// news summary: merging overlapping ranges, rendering them together with the
// summary's markdown-lite styling, and mapping rendered selections back to
// canonical offsets.
package highlight

import (
	"cmp"
	"slices"
	"time"

	"research-news/internal/domain"

	"github.com/google/uuid"
)

// Merge collapses overlapping and touching highlights into the minimal sorted
// cover. Malformed entries (negative start, start >= end) are dropped. When
// highlights merge, the first one in sorted order keeps its metadata.
func Merge(highlights []domain.Highlight) []domain.Highlight {
	valid := make([]domain.Highlight, 0, len(highlights))
	for _, h := range highlights {
		if h.Valid() {
			valid = append(valid, h)
		}
	}
	if len(valid) <= 1 {
		return valid
	}

	slices.SortStableFunc(valid, func(a, b domain.Highlight) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := make([]domain.Highlight, 0, len(valid))
	cur := valid[0]
	for _, next := range valid[1:] {
		// Touching ranges merge too: a shared boundary reads as one highlight.
		if cur.End >= next.Start {
			cur.End = max(cur.End, next.End)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}

// Sanitize drops highlights that do not fit inside a text of length n.
func Sanitize(highlights []domain.Highlight, n int) []domain.Highlight {
	out := make([]domain.Highlight, 0, len(highlights))
	for _, h := range highlights {
		if h.Valid() && h.End <= n {
			out = append(out, h)
		}
	}
	return out
}

// Dropped returns how many highlights Sanitize would discard.
func Dropped(highlights []domain.Highlight, n int) int {
	return len(highlights) - len(Sanitize(highlights, n))
}

// NewHighlight builds a highlight over [start, end) of the document's
// canonical text. The captured text is stored verbatim. An offset inside a
// surrogate pair moves past it, as Locate does.
func NewHighlight(doc *Document, start, end int, now time.Time) (domain.Highlight, error) {
	if start == end {
		return domain.Highlight{}, ErrEmptySelection
	}
	if start < 0 || start > end || end > doc.Len() {
		return domain.Highlight{}, ErrInvalidRange
	}
	start, end = snap(doc.units, start), snap(doc.units, end)
	if start == end {
		return domain.Highlight{}, ErrEmptySelection
	}
	return domain.Highlight{
		ID:        uuid.NewString(),
		Start:     start,
		End:       end,
		Text:      doc.Slice(start, end),
		CreatedAt: now,
	}, nil
}

// Add inserts h into the set and returns the merged result. The input set is
// not modified.
func Add(set []domain.Highlight, h domain.Highlight) ([]domain.Highlight, error) {
	if h.Start == h.End {
		return nil, ErrEmptySelection
	}
	if !h.Valid() {
		return nil, ErrInvalidRange
	}
	next := make([]domain.Highlight, 0, len(set)+1)
	next = append(next, set...)
	next = append(next, h)
	return Merge(next), nil
}

// Clear returns the empty highlight set.
func Clear() []domain.Highlight {
	return []domain.Highlight{}
}
