package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"research-news/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraphLength = 20
	enoughParagraphs   = 3
	maxArticleRunes    = 20000
)

var paragraphSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".story-body p",
	".entry-content p",
	".post-content p",
	"main p",
	"#content p",
	"p",
}

var boilerplate = []string{
	"cookie",
	"subscribe to",
	"sign up for",
	"all rights reserved",
	"javascript is disabled",
}

// ArticleExtractor pulls the readable paragraphs out of news pages.
type ArticleExtractor struct {
	fetcher *fetcher
	logger  domain.Logger
}

// NewArticleExtractor creates an extractor with a per-request timeout.
// Requests are spaced at least interval apart.
func NewArticleExtractor(timeout, interval time.Duration, logger domain.Logger) *ArticleExtractor {
	return &ArticleExtractor{
		fetcher: newFetcher(timeout, interval),
		logger:  logger,
	}
}

// Extract loads url and returns its title and body text.
func (e *ArticleExtractor) Extract(ctx context.Context, url string) (*domain.Article, error) {
	body, err := e.fetcher.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	doc.Find("script, style, nav, footer, aside, noscript").Remove()

	content := extractParagraphs(doc)
	if content == "" {
		return nil, fmt.Errorf("no article content found at %s", url)
	}

	e.logger.Debug("Article extracted", "url", url, "chars", len(content))
	return &domain.Article{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}, nil
}

func extractParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	seen := make(map[string]bool)

	for _, selector := range paragraphSelectors {
		doc.Find(selector).Each(func(_ int, p *goquery.Selection) {
			text := collapseSpace(p.Text())
			if utf8.RuneCountInString(text) <= minParagraphLength || seen[text] || isBoilerplate(text) {
				return
			}
			seen[text] = true
			paragraphs = append(paragraphs, text)
		})
		if len(paragraphs) >= enoughParagraphs {
			break
		}
	}

	return truncateRunes(strings.Join(paragraphs, "\n\n"), maxArticleRunes)
}

func extractTitle(doc *goquery.Document) string {
	if title := collapseSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return collapseSpace(title)
	}
	return collapseSpace(doc.Find("title").First().Text())
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range boilerplate {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
