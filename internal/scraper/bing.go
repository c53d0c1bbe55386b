package scraper

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"research-news/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	bingOrigin         = "https://www.bing.com"
	minTitleLength     = 10
	maxFallbackResults = 10
)

// Bing changes its markup often; the first selector that matches anything wins.
var resultSelectors = []string{
	"a.title",
	`.news-card a[href*="http"]`,
	`.na_cnt a[href*="http"]`,
	"a[data-author]",
	".newsitem a",
	"h2 a",
	`a[href*="/news/"]`,
	".news-card-body a",
	"article a",
	".caption a",
}

var fallbackSelectors = []string{
	`a[href*="news"]`,
	`a[href*="article"]`,
	"a[title]",
}

var spamPhrases = []string{"top stock", "stock to watch", "stock to buy"}

// BingScraper searches Bing News for the past week.
type BingScraper struct {
	fetcher *fetcher
	parser  *gofeed.Parser
	baseURL string
	logger  domain.Logger
}

// NewBingScraper creates a scraper whose requests time out after timeout and
// are spaced at least interval apart.
func NewBingScraper(timeout, interval time.Duration, logger domain.Logger) *BingScraper {
	return &BingScraper{
		fetcher: newFetcher(timeout, interval),
		parser:  gofeed.NewParser(),
		baseURL: bingOrigin,
		logger:  logger,
	}
}

// WithBaseURL points the scraper at another host.
func (s *BingScraper) WithBaseURL(baseURL string) *BingScraper {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Search returns the news results for query. When the HTML page yields
// nothing the RSS rendition of the same search is tried.
func (s *BingScraper) Search(ctx context.Context, query string) ([]domain.ScrapeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	body, err := s.fetcher.get(ctx, s.searchURL(query, false))
	if err != nil {
		return nil, fmt.Errorf("bing search %q: %w", query, err)
	}
	results, err := s.parseHTML(body, query)
	body.Close()
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		s.logger.Info("Bing search completed", "query", query, "results", len(results))
		return results, nil
	}

	s.logger.Warn("No links found in Bing HTML, trying RSS", "query", query)
	results, err = s.searchRSS(ctx, query)
	if err != nil {
		s.logger.Error("Bing RSS search failed", err, "query", query)
		return []domain.ScrapeResult{}, nil
	}
	s.logger.Info("Bing RSS search completed", "query", query, "results", len(results))
	return results, nil
}

func (s *BingScraper) searchURL(query string, rss bool) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	u := fmt.Sprintf("%s/news/search?q=%s&qft=interval%%3d%%227%%22&form=PTFTNR", s.baseURL, strings.Join(words, "+"))
	if rss {
		u += "&format=rss"
	}
	return u
}

func (s *BingScraper) parseHTML(r io.Reader, query string) ([]domain.ScrapeResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	c := newCollector(query)
	for _, selector := range resultSelectors {
		links := doc.Find(selector)
		if links.Length() == 0 {
			continue
		}
		s.logger.Debug("Bing selector matched", "selector", selector, "links", links.Length())
		links.Each(func(_ int, a *goquery.Selection) {
			author := a.AttrOr("data-author", "")
			if author == "" {
				author = a.Closest(".newsitem").Find("[data-author]").AttrOr("data-author", "")
			}
			c.add(strings.TrimSpace(a.Text()), a.AttrOr("href", ""), author)
		})
		return c.results, nil
	}

	for _, selector := range fallbackSelectors {
		doc.Find(selector).EachWithBreak(func(i int, a *goquery.Selection) bool {
			if i >= maxFallbackResults {
				return false
			}
			title := strings.TrimSpace(a.Text())
			if title == "" {
				title = strings.TrimSpace(a.AttrOr("title", ""))
			}
			c.add(title, a.AttrOr("href", ""), "")
			return true
		})
		if len(c.results) > 0 {
			break
		}
	}
	return c.results, nil
}

func (s *BingScraper) searchRSS(ctx context.Context, query string) ([]domain.ScrapeResult, error) {
	body, err := s.fetcher.get(ctx, s.searchURL(query, true))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := s.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}

	c := newCollector(query)
	for _, item := range feed.Items {
		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}
		if author == "" {
			author = feedSource(item)
		}
		if c.add(collapseSpace(item.Title), item.Link, author) {
			c.results[len(c.results)-1].Content = collapseSpace(item.Description)
		}
	}
	return c.results, nil
}

// feedSource reads the publisher from Bing's News:Source element.
func feedSource(item *gofeed.Item) string {
	for prefix, exts := range item.Extensions {
		if !strings.EqualFold(prefix, "news") {
			continue
		}
		for name, values := range exts {
			if strings.EqualFold(name, "source") && len(values) > 0 {
				return strings.TrimSpace(values[0].Value)
			}
		}
	}
	return ""
}

// collector applies the result filters and drops duplicate URLs.
type collector struct {
	query   string
	seen    map[string]bool
	results []domain.ScrapeResult
}

func newCollector(query string) *collector {
	return &collector{query: query, seen: make(map[string]bool), results: []domain.ScrapeResult{}}
}

func (c *collector) add(title, href, author string) bool {
	if href == "" || utf8.RuneCountInString(title) < minTitleLength || isSpam(title) {
		return false
	}
	link := absoluteURL(href)
	if link == "" || c.seen[link] {
		return false
	}
	c.seen[link] = true
	c.results = append(c.results, domain.ScrapeResult{
		Query:  c.query,
		Title:  title,
		URL:    link,
		Author: strings.TrimSpace(author),
	})
	return true
}

func absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return bingOrigin + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return ""
	}
}

func isSpam(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
