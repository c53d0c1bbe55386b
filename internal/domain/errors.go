package domain

import "errors"

// Domain errors
var (
	ErrNewsNotFound       = errors.New("news not found")
	ErrInvalidNewsID      = errors.New("invalid news id")
	ErrInvalidHighlight   = errors.New("invalid highlight data structure")
	ErrEmptyQuery         = errors.New("query is required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
