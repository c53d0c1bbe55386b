package highlight

import (
	"io"
	"slices"
	"strings"

	"research-news/internal/domain"

	"golang.org/x/net/html"
)

const (
	strongOpen     = `<span style="color: darkgreen;">`
	emphasisOpen   = `<span style="color: darkred;">`
	highlightOpen  = `<mark class="highlight">`
	spanClose      = `</span>`
	highlightClose = `</mark>`
)

// Span is a maximal run of canonical text sharing one style set.
type Span struct {
	Text  string
	Style Style
}

func (s Span) Strong() bool      { return s.Style.Has(StyleStrong) }
func (s Span) Emphasis() bool    { return s.Style.Has(StyleEmphasis) }
func (s Span) Highlighted() bool { return s.Style.Has(StyleHighlight) }

type edge struct {
	at    int
	style Style
	delta int
}

// Spans walks the canonical text once and tags every piece with the styles
// active over it. Highlights are merged and bounds-checked first; markdown
// styling and highlights share the same coordinate space.
func (d *Document) Spans(highlights []domain.Highlight) []Span {
	n := d.Len()
	if n == 0 {
		return nil
	}

	edges := make([]edge, 0, 2*(len(d.runs)+len(highlights)))
	for _, r := range d.runs {
		edges = append(edges,
			edge{at: snap(d.units, r.Start), style: r.Style, delta: 1},
			edge{at: snap(d.units, r.End), style: r.Style, delta: -1})
	}
	for _, h := range Merge(Sanitize(highlights, n)) {
		edges = append(edges,
			edge{at: snap(d.units, h.Start), style: StyleHighlight, delta: 1},
			edge{at: snap(d.units, h.End), style: StyleHighlight, delta: -1})
	}
	slices.SortStableFunc(edges, func(a, b edge) int { return a.at - b.at })

	bounds := []int{0, n}
	for _, e := range edges {
		bounds = append(bounds, e.at)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var (
		spans  []Span
		counts [3]int
		next   int
	)
	for i := 0; i+1 < len(bounds); i++ {
		at, end := bounds[i], bounds[i+1]
		for ; next < len(edges) && edges[next].at <= at; next++ {
			counts[bitIndex(edges[next].style)] += edges[next].delta
		}
		var style Style
		for bit, c := range counts {
			if c > 0 {
				style |= 1 << bit
			}
		}
		text := decode16(d.units[at:end])
		if last := len(spans) - 1; last >= 0 && spans[last].Style == style {
			spans[last].Text += text
			continue
		}
		spans = append(spans, Span{Text: text, Style: style})
	}
	return spans
}

func bitIndex(s Style) int {
	switch s {
	case StyleStrong:
		return 0
	case StyleEmphasis:
		return 1
	default:
		return 2
	}
}

// HTML renders the document with its styling and the given highlights. Tags
// open in a fixed order and close in reverse inside every span, so the output
// is always well-formed.
func (d *Document) HTML(highlights []domain.Highlight) string {
	var b strings.Builder
	b.Grow(len(d.text) + 32*len(highlights))
	for _, s := range d.Spans(highlights) {
		writeSpan(&b, s)
	}
	return b.String()
}

func writeSpan(b *strings.Builder, s Span) {
	if s.Strong() {
		b.WriteString(strongOpen)
	}
	if s.Emphasis() {
		b.WriteString(emphasisOpen)
	}
	if s.Highlighted() {
		b.WriteString(highlightOpen)
	}
	b.WriteString(html.EscapeString(s.Text))
	if s.Highlighted() {
		b.WriteString(highlightClose)
	}
	if s.Emphasis() {
		b.WriteString(spanClose)
	}
	if s.Strong() {
		b.WriteString(spanClose)
	}
}

// Spans returns the highlighted span list for plain text.
func Spans(text string, highlights []domain.Highlight) []Span {
	return NewPlainDocument(text).Spans(highlights)
}

// Render returns plain text with highlights wrapped in mark elements.
func Render(text string, highlights []domain.Highlight) string {
	return NewPlainDocument(text).HTML(highlights)
}

// PlainText strips all markup from rendered output and returns the text
// content, entities decoded.
func PlainText(rendered string) (string, error) {
	nodes, err := textNodes(rendered)
	if err != nil {
		return "", err
	}
	return strings.Join(nodes, ""), nil
}

// textNodes returns the text content of rendered markup in document order.
func textNodes(rendered string) ([]string, error) {
	var nodes []string
	z := html.NewTokenizer(strings.NewReader(rendered))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return nodes, nil
		case html.TextToken:
			if t := string(z.Text()); t != "" {
				nodes = append(nodes, t)
			}
		}
	}
}
