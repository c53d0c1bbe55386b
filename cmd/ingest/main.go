// Command ingest runs every researcher's saved queries through the Bing News
// scraper and stores the enriched results.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"research-news/internal/config"
	"research-news/internal/domain"

	"github.com/joho/godotenv"
)

func main() {
	researchersFile := flag.String("researchers", "", "researchers YAML file (defaults to RESEARCHERS_FILE)")
	only := flag.String("researcher", "", "only ingest queries of this researcher")
	enrich := flag.Bool("enrich", true, "fetch and summarize each article")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := config.NewContainer(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			container.Logger.Error("Failed to release resources", err)
		}
	}()

	path := *researchersFile
	if path == "" {
		path = container.Config.GetResearchersFile()
	}
	researchers, err := config.LoadResearchers(path)
	if err != nil {
		container.Logger.Error("Failed to load researchers", err, "path", path)
		return
	}

	var runs, inserted, failed int
	for _, r := range researchers {
		if *only != "" && r.Name != *only {
			continue
		}
		for _, q := range r.Queries {
			if ctx.Err() != nil {
				container.Logger.Warn("Ingest interrupted", "runs", runs)
				return
			}
			runs++

			result, err := container.IngestService.Run(ctx, domain.IngestRequest{
				Query:      q,
				Researcher: r.Name,
				Save:       true,
				Enrich:     *enrich,
			})
			if err != nil {
				failed++
				container.Logger.Error("Ingest failed", err, "researcher", r.Name, "query", q)
				continue
			}
			if result.SaveError != "" {
				failed++
			}
			inserted += result.InsertedCount
			container.Logger.Info("Ingested query",
				"researcher", r.Name,
				"query", q,
				"found", len(result.Results),
				"inserted", result.InsertedCount,
			)
		}
	}

	container.Logger.Info("Ingest finished", "runs", runs, "inserted", inserted, "failed", failed)
}
