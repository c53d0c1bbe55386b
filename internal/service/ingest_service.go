package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"research-news/internal/domain"

	"golang.org/x/sync/errgroup"
)

const defaultIngestWorkers = 4

type IngestService struct {
	scraper    domain.NewsScraper
	extractor  domain.ArticleExtractor
	summarizer domain.Summarizer
	repo       domain.NewsRepository
	logger     domain.Logger
	workers    int
	researcher string
	now        func() time.Time
}

func NewIngestService(
	scraper domain.NewsScraper,
	extractor domain.ArticleExtractor,
	summarizer domain.Summarizer,
	repo domain.NewsRepository,
	workers int,
	defaultResearcher string,
	logger domain.Logger,
) *IngestService {
	if workers <= 0 {
		workers = defaultIngestWorkers
	}
	return &IngestService{
		scraper:    scraper,
		extractor:  extractor,
		summarizer: summarizer,
		repo:       repo,
		logger:     logger,
		workers:    workers,
		researcher: strings.TrimSpace(defaultResearcher),
		now:        time.Now,
	}
}

// Run searches for req.Query, optionally fetches and summarizes every hit,
// and optionally stores the hits as news for req.Researcher, falling back to
// the default researcher. A failed save is reported in the result; the
// scraped results are still returned.
func (s *IngestService) Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	researcher := strings.TrimSpace(req.Researcher)
	if researcher == "" {
		researcher = s.researcher
	}
	if req.Save && researcher == "" {
		return nil, &domain.ValidationError{Field: "researcher", Message: "is required to save results"}
	}

	results, err := s.scraper.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	s.logger.Info("Scrape completed", "query", query, "results", len(results))

	if req.Enrich && len(results) > 0 {
		if err := s.enrich(ctx, results); err != nil {
			return nil, err
		}
	}

	res := &domain.IngestResult{Query: query, Results: results}
	if !req.Save {
		return res, nil
	}

	inserted, err := s.repo.InsertMany(ctx, s.toNews(results, researcher))
	if err != nil {
		s.logger.Error("Failed to save scrape results", err, "query", query, "researcher", researcher)
		res.SaveError = err.Error()
		return res, nil
	}
	res.InsertedCount = inserted
	res.Saved = true
	s.logger.Info("Scrape results saved", "query", query, "researcher", researcher, "inserted", inserted)
	return res, nil
}

// enrich fills Content and Summary of each result in place. Articles that
// cannot be fetched or summarized are logged and left as they are.
func (s *IngestService) enrich(ctx context.Context, results []domain.ScrapeResult) error {
	sem := make(chan struct{}, s.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			r := &results[i]
			article, err := s.extractor.Extract(gctx, r.URL)
			if err != nil {
				s.logger.Warn("Failed to extract article", "url", r.URL, "error", err)
				return nil
			}
			r.Content = article.Content

			summary, err := s.summarizer.Summarize(gctx, r.Title, article.Content)
			if err != nil {
				s.logger.Warn("Failed to summarize article", "url", r.URL, "error", err)
				return nil
			}
			r.Summary = summary
			return nil
		})
	}
	return g.Wait()
}

func (s *IngestService) toNews(results []domain.ScrapeResult, researcher string) []*domain.News {
	now := s.now().UTC()
	items := make([]*domain.News, 0, len(results))
	for _, r := range results {
		items = append(items, &domain.News{
			Title:      r.Title,
			Content:    r.Content,
			Summary:    r.Summary,
			Link:       r.URL,
			Date:       now,
			Researcher: researcher,
			Query:      r.Query,
			Highlights: []domain.Highlight{},
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return items
}
