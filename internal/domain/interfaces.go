package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetStorageDriver() string
	GetSQLitePath() string
	GetMongoURI() string
	GetMongoDatabase() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetRequireAuth() bool
	GetAllowedOrigins() []string
	GetHighlightDebounce() time.Duration
	GetScrapeConcurrency() int
	GetScrapeRateInterval() time.Duration
	GetScrapeTimeout() time.Duration
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetResearchersFile() string
	// GetDefaultResearcher names the owner of saved scrape results when the
	// request names none. Empty makes the researcher mandatory.
	GetDefaultResearcher() string
}
