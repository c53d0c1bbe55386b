package highlight

import "strings"

// Style is a bitmask of the annotations active on a run of text.
type Style uint8

const (
	StyleStrong Style = 1 << iota
	StyleEmphasis
	StyleHighlight
)

// Has reports whether all bits of o are set.
func (s Style) Has(o Style) bool {
	return s&o == o
}

// MarkerKind names the markdown-lite marker a removed run belonged to.
type MarkerKind uint8

const (
	MarkerStrong MarkerKind = iota + 1
	MarkerEmphasis
)

// MarkerRun records a marker removed from the source text. Source offsets
// and Canonical are in UTF-16 code units.
type MarkerRun struct {
	SourceStart int
	SourceEnd   int
	Canonical   int
	Kind        MarkerKind
}

// Len returns the number of source units the marker occupied.
func (m MarkerRun) Len() int {
	return m.SourceEnd - m.SourceStart
}

// StyleRun is a styled [Start, End) range over canonical text.
type StyleRun struct {
	Start int
	End   int
	Style Style
}

// Document is a summary reduced to its canonical plain text. Every offset the
// package hands out (style runs and highlights alike) is relative to Text.
type Document struct {
	text    string
	units   []uint16
	runs    []StyleRun
	markers []MarkerRun
}

// NewPlainDocument wraps text that carries no markdown-lite markers.
func NewPlainDocument(text string) *Document {
	return &Document{
		text:  text,
		units: encode16(text),
	}
}

// Canonicalize strips markdown-lite markers from src exactly once.
//
// Strong runs are **…** and emphasis runs are *…*; both close at the nearest
// matching marker on the same line. Emphasis is matched on the text left
// after strong markers are removed, so an emphasis run may cross a strong
// boundary; the two only combine as style bits and never nest as markup.
func Canonicalize(src string) *Document {
	r := []rune(src)
	n := len(r)
	removed := make([]MarkerKind, n)

	type span struct {
		start, end int
		style      Style
	}
	var spans []span

	for i := 0; i+1 < n; {
		if r[i] != '*' || r[i+1] != '*' {
			i++
			continue
		}
		closing := -1
		for j := i + 2; j+1 < n && r[j] != '\n'; j++ {
			if r[j] == '*' && r[j+1] == '*' {
				closing = j
				break
			}
		}
		if closing < 0 {
			i++
			continue
		}
		removed[i], removed[i+1] = MarkerStrong, MarkerStrong
		removed[closing], removed[closing+1] = MarkerStrong, MarkerStrong
		spans = append(spans, span{start: i + 2, end: closing, style: StyleStrong})
		i = closing + 2
	}

	kept := make([]int, 0, n)
	for i := range r {
		if removed[i] == 0 {
			kept = append(kept, i)
		}
	}
	for p := 0; p < len(kept); {
		if r[kept[p]] != '*' {
			p++
			continue
		}
		closing := -1
		for q := p + 1; q < len(kept) && r[kept[q]] != '\n'; q++ {
			if r[kept[q]] == '*' {
				closing = q
				break
			}
		}
		if closing < 0 {
			p++
			continue
		}
		removed[kept[p]], removed[kept[closing]] = MarkerEmphasis, MarkerEmphasis
		spans = append(spans, span{start: kept[p] + 1, end: kept[closing], style: StyleEmphasis})
		p = closing + 1
	}

	// canon[i] is the canonical offset of rune i; s tracks its source offset.
	canon := make([]int, n+1)
	var b strings.Builder
	b.Grow(len(src))
	doc := &Document{}
	c, s := 0, 0
	for i, ch := range r {
		canon[i] = c
		w := 1
		if ch > 0xFFFF {
			w = 2
		}
		if kind := removed[i]; kind != 0 {
			if last := len(doc.markers) - 1; last >= 0 && doc.markers[last].Kind == kind &&
				doc.markers[last].SourceEnd == s && kind == MarkerStrong && doc.markers[last].Len() < 2 {
				doc.markers[last].SourceEnd += w
			} else {
				doc.markers = append(doc.markers, MarkerRun{SourceStart: s, SourceEnd: s + w, Canonical: c, Kind: kind})
			}
		} else {
			b.WriteRune(ch)
			c += w
		}
		s += w
	}
	canon[n] = c

	doc.text = b.String()
	doc.units = encode16(doc.text)
	for _, sp := range spans {
		start, end := canon[sp.start], canon[sp.end]
		if start < end {
			doc.runs = append(doc.runs, StyleRun{Start: start, End: end, Style: sp.style})
		}
	}
	return doc
}

// Text returns the canonical plain text.
func (d *Document) Text() string {
	return d.text
}

// Len returns the canonical text length in UTF-16 code units.
func (d *Document) Len() int {
	return len(d.units)
}

// Slice returns the canonical text in [start, end), clamped to the text.
func (d *Document) Slice(start, end int) string {
	start = min(max(start, 0), len(d.units))
	end = min(max(end, start), len(d.units))
	return decode16(d.units[start:end])
}

// ToCanonical maps an offset into the marked-up source to the canonical
// text. Offsets inside a removed marker collapse to the marker's canonical
// position.
func (d *Document) ToCanonical(source int) int {
	removedBefore := 0
	for _, m := range d.markers {
		if m.SourceStart >= source {
			break
		}
		if source < m.SourceEnd {
			return m.Canonical
		}
		removedBefore += m.Len()
	}
	return source - removedBefore
}
