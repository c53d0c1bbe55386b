package highlight

import "errors"

var (
	// ErrEmptySelection is returned for zero-length selections. Callers treat
	// it as a no-op.
	ErrEmptySelection = errors.New("empty selection")
	// ErrInvalidRange is returned when a range does not fit the canonical text.
	ErrInvalidRange = errors.New("highlight range out of bounds")
	// ErrInvalidBoundary is returned when a selection boundary does not address
	// a rendered text node.
	ErrInvalidBoundary = errors.New("selection boundary out of bounds")
	// ErrTextMismatch is returned when rendered markup no longer matches the
	// canonical text it was produced from.
	ErrTextMismatch = errors.New("rendered text does not match canonical text")
	// ErrSuperseded resolves a debounced write replaced by a newer one.
	ErrSuperseded = errors.New("write superseded by a newer edit")
	// ErrCancelled resolves debounced writes dropped by Stop.
	ErrCancelled = errors.New("write cancelled")
)
