package main

import (
	"context"
	"flag"
	"log"
	"time"

	"rickdex/internal/catalog"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

func main() {
	var (
		out    = flag.String("out", "data/characters.csv", "output CSV path")
		status = flag.String("status", "", "only export characters with this status")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	repo := catalog.NewRepo(db)
	items, err := catalog.All(ctx, repo, catalog.ListQuery{Status: *status})
	if err != nil {
		log.Fatalf("read catalog failed: %v", err)
	}
	if err := catalog.WriteCSVFile(*out, items); err != nil {
		log.Fatalf("export characters failed: %v", err)
	}

	log.Printf("✅ exported %d characters to %s", len(items), *out)
}
