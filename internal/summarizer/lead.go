package summarizer

import (
	"context"
	"strings"
	"unicode/utf8"
)

const defaultLeadRunes = 400

// LeadSummarizer is used when no model is configured. It returns the opening
// sentences of the article without any markup.
type LeadSummarizer struct {
	MaxRunes int
}

// NewLeadSummarizer creates a LeadSummarizer with the default length.
func NewLeadSummarizer() *LeadSummarizer {
	return &LeadSummarizer{MaxRunes: defaultLeadRunes}
}

// Summarize returns whole sentences from the start of content up to MaxRunes.
// The title stands in for an empty article.
func (s *LeadSummarizer) Summarize(_ context.Context, title, content string) (string, error) {
	text := strings.Join(strings.Fields(content), " ")
	if text == "" {
		return strings.TrimSpace(title), nil
	}
	limit := s.MaxRunes
	if limit <= 0 {
		limit = defaultLeadRunes
	}
	if utf8.RuneCountInString(text) <= limit {
		return text, nil
	}

	cut := string([]rune(text)[:limit])
	if idx := strings.LastIndex(cut, ". "); idx > 0 {
		return cut[:idx+1], nil
	}
	return strings.TrimSpace(cut) + "…", nil
}
