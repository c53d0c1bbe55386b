package highlight

import "strings"

// Boundary is one end of a live selection: the index of a rendered text node
// in document order and a UTF-16 offset inside it.
type Boundary struct {
	Node   int `json:"node"`
	Offset int `json:"offset"`
}

// Selection is a selected range resolved to canonical offsets.
type Selection struct {
	Start int
	End   int
	Text  string
}

// Locate resolves a selection made inside rendered markup to canonical
// offsets. Only text nodes count toward the offset; the markup wrapping them
// contributes nothing. Anchor and focus may come in either order.
func Locate(rendered string, anchor, focus Boundary) (Selection, error) {
	nodes, err := textNodes(rendered)
	if err != nil {
		return Selection{}, err
	}
	return locate(nodes, anchor, focus)
}

// LocateSpans resolves a selection over a span list, one node per span.
func LocateSpans(spans []Span, anchor, focus Boundary) (Selection, error) {
	nodes := make([]string, len(spans))
	for i, s := range spans {
		nodes[i] = s.Text
	}
	return locate(nodes, anchor, focus)
}

func locate(nodes []string, anchor, focus Boundary) (Selection, error) {
	prefix := make([]int, len(nodes)+1)
	for i, n := range nodes {
		prefix[i+1] = prefix[i] + Len16(n)
	}

	position := func(b Boundary) (int, error) {
		if b.Node < 0 || b.Node >= len(nodes) {
			return 0, ErrInvalidBoundary
		}
		size := prefix[b.Node+1] - prefix[b.Node]
		if b.Offset < 0 || b.Offset > size {
			return 0, ErrInvalidBoundary
		}
		return prefix[b.Node] + b.Offset, nil
	}

	start, err := position(anchor)
	if err != nil {
		return Selection{}, err
	}
	end, err := position(focus)
	if err != nil {
		return Selection{}, err
	}
	if start > end {
		start, end = end, start
	}
	if start == end {
		return Selection{}, ErrEmptySelection
	}

	units := encode16(strings.Join(nodes, ""))
	start, end = snap(units, start), snap(units, end)
	if start == end {
		return Selection{}, ErrEmptySelection
	}
	return Selection{Start: start, End: end, Text: decode16(units[start:end])}, nil
}
