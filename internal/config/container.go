package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"research-news/internal/domain"
	"research-news/internal/handler"
	"research-news/internal/repository"
	"research-news/internal/scraper"
	"research-news/internal/service"
	"research-news/internal/summarizer"
	"research-news/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	NewsRepository domain.NewsRepository

	NewsService      *service.NewsService
	HighlightService *service.HighlightService
	IngestService    *service.IngestService
	AuthService      domain.AuthService

	Scraper    domain.NewsScraper
	Extractor  domain.ArticleExtractor
	Summarizer domain.Summarizer

	closers []func() error
}

// NewContainer wires the application from environment configuration.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	return NewContainerWithConfig(ctx, cfg, logger.NewLogger(cfg.GetLogLevel()))
}

// NewContainerWithConfig wires the application from an explicit config.
func NewContainerWithConfig(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: appLogger,
	}

	if cfg.GetStorageDriver() == StorageSupabase || cfg.GetRequireAuth() {
		supabaseClient := repository.NewSupabaseClient(cfg, appLogger)
		if err := supabaseClient.Initialize(); err != nil {
			return nil, fmt.Errorf("supabase: %w", err)
		}
		c.SupabaseClient = supabaseClient
	}

	repo, err := c.newNewsRepository(ctx)
	if err != nil {
		return nil, err
	}
	c.NewsRepository = repo

	c.Scraper = scraper.NewBingScraper(cfg.GetScrapeTimeout(), cfg.GetScrapeRateInterval(), appLogger)
	c.Extractor = scraper.NewArticleExtractor(cfg.GetScrapeTimeout(), cfg.GetScrapeRateInterval(), appLogger)
	if err := c.newSummarizer(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	c.NewsService = service.NewNewsService(repo, appLogger)
	c.HighlightService = service.NewHighlightService(repo, cfg.GetHighlightDebounce(), appLogger)
	c.IngestService = service.NewIngestService(c.Scraper, c.Extractor, c.Summarizer, repo, cfg.GetScrapeConcurrency(), cfg.GetDefaultResearcher(), appLogger)
	if c.SupabaseClient != nil {
		c.AuthService = service.NewAuthService(c.SupabaseClient, appLogger)
	}

	return c, nil
}

func (c *Container) newNewsRepository(ctx context.Context) (domain.NewsRepository, error) {
	switch driver := c.Config.GetStorageDriver(); driver {
	case StorageSQLite:
		repo, err := repository.NewSQLiteNewsRepository(c.Config.GetSQLitePath(), c.Logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return repo, nil
	case StorageMongo:
		repo, err := repository.NewMongoNewsRepository(ctx, c.Config.GetMongoURI(), c.Config.GetMongoDatabase(), c.Logger)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return repo, nil
	case StorageSupabase:
		return repository.NewSupabaseNewsRepository(c.SupabaseClient, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func (c *Container) newSummarizer(ctx context.Context) error {
	if c.Config.GetGeminiAPIKey() == "" {
		c.Logger.Info("GEMINI_API_KEY not set, using lead-sentence summaries")
		c.Summarizer = summarizer.NewLeadSummarizer()
		return nil
	}

	gemini, err := summarizer.NewGeminiSummarizer(ctx, c.Config.GetGeminiAPIKey(), c.Config.GetGeminiModel(), c.Logger)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	c.Summarizer = gemini
	c.closers = append(c.closers, gemini.Close)
	return nil
}

// Router builds the HTTP handler. Routes under /api require a Supabase
// bearer token when REQUIRE_AUTH is set.
func (c *Container) Router() http.Handler {
	authMiddleware := handler.NoAuth
	if c.AuthService != nil && c.Config.GetRequireAuth() {
		authMiddleware = handler.NewAuthMiddleware(c.AuthService, c.Logger).Middleware
	}

	return handler.NewRouter(
		handler.NewNewsHandler(c.NewsService, c.Logger),
		handler.NewHighlightHandler(c.HighlightService, c.Logger),
		handler.NewScraperHandler(c.IngestService, c.Logger),
		handler.NewAuthHandler(),
		authMiddleware,
		c.Config.GetAllowedOrigins(),
		c.Logger,
	)
}

// Close writes pending highlight edits and releases storage and API clients.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.HighlightService != nil {
		if err := c.HighlightService.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush highlights: %w", err))
		}
		c.HighlightService.Stop()
	}
	if c.NewsRepository != nil {
		if err := c.NewsRepository.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close news repository: %w", err))
		}
	}
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
