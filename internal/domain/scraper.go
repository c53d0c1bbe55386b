package domain

import "context"

// ScrapeResult is a single news hit returned by a search scraper.
type ScrapeResult struct {
	Query   string `json:"query"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Author  string `json:"author,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Article is the extracted body of a news page.
type Article struct {
	Title   string
	Content string
	URL     string
}

// NewsScraper finds news for a search query.
type NewsScraper interface {
	Search(ctx context.Context, query string) ([]ScrapeResult, error)
}

// ArticleExtractor loads the readable text of an article URL.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (*Article, error)
}

// Summarizer produces a markdown-lite summary (**strong**, *emphasis*) of an
// article.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

// IngestRequest describes one scrape run.
type IngestRequest struct {
	Query      string
	Researcher string
	Save       bool
	Enrich     bool
}

// IngestResult reports what a scrape run found and stored.
type IngestResult struct {
	Query         string         `json:"query"`
	Results       []ScrapeResult `json:"data"`
	InsertedCount int            `json:"insertedCount"`
	Saved         bool           `json:"saved"`
	SaveError     string         `json:"saveError,omitempty"`
}

// IngestService runs scrape jobs.
type IngestService interface {
	Run(ctx context.Context, req IngestRequest) (*IngestResult, error)
}
