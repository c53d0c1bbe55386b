package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"research-news/internal/domain"
)

const (
	StorageSQLite   = "sqlite"
	StorageMongo    = "mongo"
	StorageSupabase = "supabase"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	LogLevel           string
	StorageDriver      string
	SQLitePath         string
	MongoURI           string
	MongoDatabase      string
	SupabaseURL        string
	SupabaseKey        string
	RequireAuth        bool
	AllowedOrigins     []string
	HighlightDebounce  time.Duration
	ScrapeConcurrency  int
	ScrapeRateInterval time.Duration
	ScrapeTimeout      time.Duration
	GeminiAPIKey       string
	GeminiModel        string
	ResearchersFile    string
	DefaultResearcher  string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		StorageDriver:      strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:         getEnvOrDefault("SQLITE_PATH", "./data/news.db"),
		MongoURI:           getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnvOrDefault("MONGODB_DATABASE", "research_news"),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		RequireAuth:        getEnvBoolOrDefault("REQUIRE_AUTH", false),
		AllowedOrigins:     getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		HighlightDebounce:  getEnvDurationOrDefault("HIGHLIGHT_DEBOUNCE", 800*time.Millisecond),
		ScrapeConcurrency:  getEnvIntOrDefault("SCRAPE_CONCURRENCY", 4),
		ScrapeRateInterval: getEnvDurationOrDefault("SCRAPE_RATE_INTERVAL", 750*time.Millisecond),
		ScrapeTimeout:      getEnvDurationOrDefault("SCRAPE_TIMEOUT", 15*time.Second),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		ResearchersFile:    getEnvOrDefault("RESEARCHERS_FILE", "configs/researchers.yaml"),
		DefaultResearcher:  strings.TrimSpace(getEnvOrDefault("DEFAULT_RESEARCHER", "")),
	}
}

func (c *AppConfig) GetServerPort() string { return c.ServerPort }
func (c *AppConfig) GetLogLevel() string { return c.LogLevel }
func (c *AppConfig) GetStorageDriver() string { return c.StorageDriver }
func (c *AppConfig) GetSQLitePath() string { return c.SQLitePath }
func (c *AppConfig) GetMongoURI() string { return c.MongoURI }
func (c *AppConfig) GetMongoDatabase() string { return c.MongoDatabase }
func (c *AppConfig) GetSupabaseURL() string { return c.SupabaseURL }
func (c *AppConfig) GetSupabaseKey() string { return c.SupabaseKey }
func (c *AppConfig) GetRequireAuth() bool { return c.RequireAuth }
func (c *AppConfig) GetAllowedOrigins() []string { return c.AllowedOrigins }
func (c *AppConfig) GetHighlightDebounce() time.Duration { return c.HighlightDebounce }
func (c *AppConfig) GetScrapeConcurrency() int { return c.ScrapeConcurrency }
func (c *AppConfig) GetScrapeRateInterval() time.Duration { return c.ScrapeRateInterval }
func (c *AppConfig) GetScrapeTimeout() time.Duration { return c.ScrapeTimeout }
func (c *AppConfig) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *AppConfig) GetGeminiModel() string { return c.GeminiModel }
func (c *AppConfig) GetResearchersFile() string { return c.ResearchersFile }
func (c *AppConfig) GetDefaultResearcher() string { return c.DefaultResearcher }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("800ms") or bare milliseconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
