package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"research-news/internal/domain"
	"research-news/internal/highlight"
	apperrors "research-news/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// toAppError maps service and domain errors onto the API error taxonomy.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &validationErr):
		return apperrors.NewValidationError(validationErr.Error())
	case errors.Is(err, domain.ErrNewsNotFound):
		return apperrors.NewNotFoundError("News not found")
	case errors.Is(err, domain.ErrInvalidNewsID):
		return apperrors.NewValidationError("Invalid news ID")
	case errors.Is(err, domain.ErrInvalidHighlight):
		return apperrors.NewValidationError("Invalid highlight data structure")
	case errors.Is(err, domain.ErrEmptyQuery):
		return apperrors.NewValidationError("Query is required")
	case errors.Is(err, highlight.ErrEmptySelection),
		errors.Is(err, highlight.ErrInvalidRange),
		errors.Is(err, highlight.ErrInvalidBoundary),
		errors.Is(err, highlight.ErrTextMismatch):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		return apperrors.NewUnauthorizedError("Invalid token")
	case errors.Is(err, domain.ErrStorageUnavailable):
		return apperrors.NewUnavailableError("News store unavailable", err)
	default:
		return apperrors.NewInternalError("Internal server error", err)
	}
}

// writeServiceError responds with the mapped error. Server-side failures are
// logged with msg; client errors are not.
func writeServiceError(w http.ResponseWriter, logger domain.Logger, err error, msg string, fields ...interface{}) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error(msg, err, fields...)
		writeError(w, appErr.StatusCode, msg)
		return
	}
	writeError(w, appErr.StatusCode, appErr.Message)
}

// decodeJSON decodes an optional JSON body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
