package main

import (
	"context"
	"flag"
	"log"
	"time"

	"rickdex/internal/catalog"
	"rickdex/internal/crawler"
	"rickdex/internal/directory"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

func main() {
	var (
		name     = flag.String("name", "", "only crawl characters whose name matches")
		maxPages = flag.Int("max-pages", 0, "stop after this many pages (0 = all)")
		parallel = flag.Int("parallel", 4, "concurrent page fetches")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall crawl timeout")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbCfg := database.DefaultConfig(cfg.DBPath)
	db := database.MustOpen(dbCfg)
	defer db.Close()

	client := directory.NewClient(cfg.DirectoryBaseURL, cfg.HTTPTimeout)
	report, err := crawler.Crawl(ctx, client, catalog.NewRepo(db), crawler.Options{
		Name:     *name,
		MaxPages: *maxPages,
		Parallel: *parallel,
	})
	if err != nil {
		log.Fatalf("crawl failed: %v", err)
	}

	log.Printf("✅ stored %d characters from %d pages (%d skipped) at %s",
		report.Characters, report.Pages, report.Failed, dbCfg.Path)
}
