package handler

import (
	"net/http"

	"research-news/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	newsHandler *NewsHandler,
	highlightHandler *HighlightHandler,
	scraperHandler *ScraperHandler,
	authHandler *AuthHandler,
	authMiddleware func(http.Handler) http.Handler,
	allowedOrigins []string,
	logger domain.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "research-news"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods(http.MethodGet)

	// News feed
	api.HandleFunc("/news", newsHandler.ListNews).Methods(http.MethodGet)
	api.HandleFunc("/news/{id}", newsHandler.GetNews).Methods(http.MethodGet)
	api.HandleFunc("/news/{id}/read", newsHandler.SetRead).Methods(http.MethodPatch)
	api.HandleFunc("/news/{id}/important", newsHandler.SetImportant).Methods(http.MethodPatch)
	api.HandleFunc("/researchers", newsHandler.Researchers).Methods(http.MethodGet)
	api.HandleFunc("/queries", newsHandler.Queries).Methods(http.MethodGet)
	api.HandleFunc("/dates", newsHandler.Dates).Methods(http.MethodGet)

	// Highlights
	api.HandleFunc("/news/{id}/highlights", highlightHandler.GetHighlights).Methods(http.MethodGet)
	api.HandleFunc("/news/{id}/highlights", highlightHandler.ReplaceHighlights).Methods(http.MethodPut)
	api.HandleFunc("/news/{id}/highlights", highlightHandler.AddHighlight).Methods(http.MethodPost)
	api.HandleFunc("/news/{id}/highlights", highlightHandler.ClearHighlights).Methods(http.MethodDelete)
	api.HandleFunc("/news/{id}/summary", highlightHandler.RenderSummary).Methods(http.MethodGet)

	// Scraper
	api.HandleFunc("/bing-scraper", scraperHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/bing-scraper", scraperHandler.SearchPost).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
