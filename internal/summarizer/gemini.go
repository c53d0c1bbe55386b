package summarizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"research-news/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxPromptRunes = 6000

// GeminiSummarizer writes short research summaries with a Gemini model.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
	logger domain.Logger
}

// NewGeminiSummarizer creates a summarizer authenticated with apiKey.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string, logger domain.Logger) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logger.Info("Gemini summarizer initialized", "model", model)
	return &GeminiSummarizer{client: client, model: model, logger: logger}, nil
}

// Summarize returns a summary of the article that marks key figures as
// **strong** and named entities as *emphasis*.
func (s *GeminiSummarizer) Summarize(ctx context.Context, title, content string) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(512)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(title, content)))
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	summary := cleanSummary(sb.String())
	if summary == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return summary, nil
}

// Close releases the underlying client.
func (s *GeminiSummarizer) Close() error {
	return s.client.Close()
}

func buildPrompt(title, content string) string {
	content = strings.Join(strings.Fields(strings.ReplaceAll(content, "\r", "")), " ")
	if utf8.RuneCountInString(content) > maxPromptRunes {
		trimmed := string([]rune(content)[:maxPromptRunes])
		if idx := strings.LastIndex(trimmed, ". "); idx > maxPromptRunes/5 {
			trimmed = trimmed[:idx+1]
		}
		content = trimmed + "\n[TRUNCATED]"
	}

	var b strings.Builder
	b.WriteString("Summarize this news article for an investment research analyst.\n\n")
	fmt.Fprintf(&b, "TITLE: %s\n", strings.TrimSpace(title))
	fmt.Fprintf(&b, "ARTICLE: %s\n\n", content)
	b.WriteString("RULES:\n")
	b.WriteString("- Write 2 to 4 plain sentences, at most 600 characters.\n")
	b.WriteString("- Wrap key figures (rates, prices, percentages, amounts) in double asterisks, like **4.5%**.\n")
	b.WriteString("- Wrap company, institution and person names in single asterisks, like *Federal Reserve*.\n")
	b.WriteString("- No headings, lists, links or other formatting. Do not start with \"This article\".\n")
	return b.String()
}

var (
	listMarker   = regexp.MustCompile(`^(?:[-+•]|\d+[.)])\s+`)
	headerMarker = regexp.MustCompile(`^#{1,6}\s+`)
	summaryLabel = regexp.MustCompile(`(?i)^\**summary\**\s*:\s*\**\s*`)
)

// cleanSummary flattens model output into one paragraph of markdown-lite
// text. Line-leading list and header markers are dropped so they cannot be
// read as emphasis.
func cleanSummary(s string) string {
	var parts []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		line = headerMarker.ReplaceAllString(line, "")
		line = listMarker.ReplaceAllString(line, "")
		if strings.HasPrefix(line, "* ") {
			line = strings.TrimSpace(line[2:])
		}
		line = summaryLabel.ReplaceAllString(line, "")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
