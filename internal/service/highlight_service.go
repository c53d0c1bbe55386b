package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"research-news/internal/domain"
	"research-news/internal/highlight"
)

// itemState is the optimistic highlight set of one item. While cached is set
// it is newer than the store: a debounced write is pending or has failed.
// refs counts callers and scheduled writes using the state; it is guarded by
// HighlightService.mu.
type itemState struct {
	mu         sync.Mutex
	highlights []domain.Highlight
	version    uint64
	cached     bool
	refs       int
}

type HighlightService struct {
	repo      domain.NewsRepository
	debouncer *highlight.Debouncer
	logger    domain.Logger
	now       func() time.Time

	mu    sync.Mutex
	items map[string]*itemState
}

// NewHighlightService creates a highlight service whose confirmed edits are
// persisted once no further edit arrives for delay.
func NewHighlightService(repo domain.NewsRepository, delay time.Duration, logger domain.Logger) *HighlightService {
	return &HighlightService{
		repo:      repo,
		debouncer: highlight.NewDebouncer(delay),
		logger:    logger,
		now:       time.Now,
		items:     make(map[string]*itemState),
	}
}

// acquire returns the state of newsID, creating it if needed. Every acquire
// is paired with release.
func (s *HighlightService) acquire(newsID string) *itemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.items[newsID]
	if st == nil {
		st = &itemState{}
		s.items[newsID] = st
	}
	st.refs++
	return st
}

func (s *HighlightService) retain(st *itemState) {
	s.mu.Lock()
	st.refs++
	s.mu.Unlock()
}

// release drops a reference. A state nobody uses whose highlights match the
// store and that has no write scheduled is evicted. The caller must not hold
// st.mu.
func (s *HighlightService) release(newsID string, st *itemState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.refs--
	if st.refs > 0 || s.items[newsID] != st {
		return
	}
	st.mu.Lock()
	idle := !st.cached && !s.debouncer.Pending(newsID)
	st.mu.Unlock()
	if idle {
		delete(s.items, newsID)
	}
}

// load reads the item and returns its canonical summary with the current
// highlight set. The caller holds st.mu.
func (s *HighlightService) load(ctx context.Context, newsID string, st *itemState) (*highlight.Document, []domain.Highlight, error) {
	if strings.TrimSpace(newsID) == "" {
		return nil, nil, domain.ErrInvalidNewsID
	}
	n, err := s.repo.GetByID(ctx, newsID)
	if err != nil {
		return nil, nil, err
	}
	doc := highlight.Canonicalize(n.Summary)
	if st.cached {
		return doc, s.clean(newsID, st.highlights, doc), nil
	}
	return doc, s.clean(newsID, n.Highlights, doc), nil
}

// clean drops highlights that no longer fit the summary and merges the rest.
func (s *HighlightService) clean(newsID string, highlights []domain.Highlight, doc *highlight.Document) []domain.Highlight {
	if dropped := highlight.Dropped(highlights, doc.Len()); dropped > 0 {
		s.logger.Warn("Dropped malformed highlights", "news_id", newsID, "dropped", dropped)
	}
	return highlight.Merge(highlight.Sanitize(highlights, doc.Len()))
}

// GetHighlights returns the merged highlight set of an item.
func (s *HighlightService) GetHighlights(ctx context.Context, newsID string) ([]domain.Highlight, error) {
	st := s.acquire(newsID)
	defer s.release(newsID, st)
	st.mu.Lock()
	defer st.mu.Unlock()

	_, hs, err := s.load(ctx, newsID, st)
	if err != nil {
		return nil, err
	}
	return hs, nil
}

// ReplaceHighlights validates and stores a whole highlight set at once. Any
// pending debounced write for the item is dropped.
func (s *HighlightService) ReplaceHighlights(ctx context.Context, newsID string, highlights []domain.Highlight) ([]domain.Highlight, error) {
	for i, h := range highlights {
		if h.ID == "" || !h.Valid() || h.Text == "" {
			return nil, fmt.Errorf("%w: highlight %d", domain.ErrInvalidHighlight, i)
		}
	}

	st := s.acquire(newsID)
	defer s.release(newsID, st)
	st.mu.Lock()
	defer st.mu.Unlock()

	n, err := s.repo.GetByID(ctx, newsID)
	if err != nil {
		return nil, err
	}
	merged := s.clean(newsID, highlights, highlight.Canonicalize(n.Summary))
	if err := s.repo.ReplaceHighlights(ctx, newsID, merged, s.now().UTC()); err != nil {
		s.logger.Error("Failed to replace highlights", err, "news_id", newsID)
		return nil, err
	}

	st.version++
	st.cached = false
	st.highlights = nil
	s.debouncer.Cancel(newsID)

	s.logger.Info("Highlights replaced", "news_id", newsID, "count", len(merged))
	return merged, nil
}

// AddHighlight confirms [start, end) of the canonical summary. The merged set
// is returned at once; the write happens after the debounce delay and its
// outcome arrives on the channel.
func (s *HighlightService) AddHighlight(ctx context.Context, newsID string, start, end int) ([]domain.Highlight, <-chan error, error) {
	return s.add(ctx, newsID, func(*highlight.Document, []domain.Highlight) (int, int, error) {
		return start, end, nil
	})
}

// AddSourceHighlight confirms [start, end) given as offsets into the stored
// summary, markers included, as an editor showing the raw markdown sees it.
func (s *HighlightService) AddSourceHighlight(ctx context.Context, newsID string, start, end int) ([]domain.Highlight, <-chan error, error) {
	return s.add(ctx, newsID, func(doc *highlight.Document, _ []domain.Highlight) (int, int, error) {
		if start < 0 || end < 0 {
			return 0, 0, highlight.ErrInvalidRange
		}
		return doc.ToCanonical(start), doc.ToCanonical(end), nil
	})
}

// AddSelection confirms a selection made on the rendered summary. With
// renderedHTML the text must still match the item's summary and nodes are
// its text nodes; without it nodes index the spans RenderSummary returns.
func (s *HighlightService) AddSelection(ctx context.Context, newsID string, renderedHTML string, anchor, focus domain.SelectionBoundary) ([]domain.Highlight, <-chan error, error) {
	a := highlight.Boundary{Node: anchor.Node, Offset: anchor.Offset}
	f := highlight.Boundary{Node: focus.Node, Offset: focus.Offset}
	return s.add(ctx, newsID, func(doc *highlight.Document, current []domain.Highlight) (int, int, error) {
		if renderedHTML == "" {
			sel, err := highlight.LocateSpans(doc.Spans(current), a, f)
			return sel.Start, sel.End, err
		}
		plain, err := highlight.PlainText(renderedHTML)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", highlight.ErrTextMismatch, err)
		}
		if plain != doc.Text() {
			return 0, 0, highlight.ErrTextMismatch
		}
		sel, err := highlight.Locate(renderedHTML, a, f)
		return sel.Start, sel.End, err
	})
}

func (s *HighlightService) add(ctx context.Context, newsID string, pick func(*highlight.Document, []domain.Highlight) (int, int, error)) ([]domain.Highlight, <-chan error, error) {
	st := s.acquire(newsID)
	defer s.release(newsID, st)
	st.mu.Lock()
	defer st.mu.Unlock()

	doc, current, err := s.load(ctx, newsID, st)
	if err != nil {
		return nil, nil, err
	}
	start, end, err := pick(doc, current)
	if err != nil {
		return nil, nil, err
	}
	h, err := highlight.NewHighlight(doc, start, end, s.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	next, err := highlight.Add(current, h)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("Highlight added", "news_id", newsID, "start", start, "end", end)
	return cloneHighlights(next), s.commit(newsID, st, next), nil
}

// ClearHighlights removes every highlight of an item.
func (s *HighlightService) ClearHighlights(ctx context.Context, newsID string) (<-chan error, error) {
	st := s.acquire(newsID)
	defer s.release(newsID, st)
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, _, err := s.load(ctx, newsID, st); err != nil {
		return nil, err
	}
	return s.commit(newsID, st, highlight.Clear()), nil
}

// commit makes next the optimistic state and schedules its write. The caller
// holds st.mu.
func (s *HighlightService) commit(newsID string, st *itemState, next []domain.Highlight) <-chan error {
	st.version++
	st.highlights = next
	st.cached = true

	version := st.version
	snapshot := cloneHighlights(next)
	return s.debouncer.Schedule(newsID, func(ctx context.Context) error {
		s.retain(st)
		defer s.release(newsID, st)
		st.mu.Lock()
		defer st.mu.Unlock()

		if st.version != version {
			return highlight.ErrSuperseded
		}
		if err := s.repo.ReplaceHighlights(ctx, newsID, snapshot, s.now().UTC()); err != nil {
			// The optimistic set stays in place; a later edit retries it.
			s.logger.Error("Failed to persist highlights", err, "news_id", newsID)
			return err
		}
		st.cached = false
		st.highlights = nil
		s.logger.Info("Highlights persisted", "news_id", newsID, "count", len(snapshot))
		return nil
	})
}

// RenderSummary renders the item summary with its styling and highlights.
func (s *HighlightService) RenderSummary(ctx context.Context, newsID string) (*domain.RenderedSummary, error) {
	st := s.acquire(newsID)
	defer s.release(newsID, st)
	st.mu.Lock()
	doc, hs, err := s.load(ctx, newsID, st)
	st.mu.Unlock()
	if err != nil {
		return nil, err
	}

	spans := doc.Spans(hs)
	out := make([]domain.SummarySpan, len(spans))
	for i, sp := range spans {
		out[i] = domain.SummarySpan{
			Text:        sp.Text,
			Strong:      sp.Strong(),
			Emphasis:    sp.Emphasis(),
			Highlighted: sp.Highlighted(),
		}
	}
	return &domain.RenderedSummary{
		NewsID:     newsID,
		Text:       doc.Text(),
		HTML:       doc.HTML(hs),
		Spans:      out,
		Highlights: hs,
	}, nil
}

// Flush writes every pending highlight set now.
func (s *HighlightService) Flush(ctx context.Context) error {
	return s.debouncer.Flush(ctx)
}

// Stop cancels pending writes and rejects new ones.
func (s *HighlightService) Stop() {
	s.debouncer.Stop()
}

func cloneHighlights(hs []domain.Highlight) []domain.Highlight {
	return append([]domain.Highlight{}, hs...)
}
