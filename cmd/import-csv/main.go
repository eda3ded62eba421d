package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"rickdex/internal/catalog"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

// import-csv loads a CSV written by export-csv back into the catalog.
func main() {
	in := flag.String("in", "data/characters.csv", "input CSV path")
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()

	chars, err := catalog.ReadCSV(f)
	if err != nil {
		log.Fatalf("read %s: %v", *in, err)
	}

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	if err := catalog.NewRepo(db).Upsert(ctx, chars); err != nil {
		log.Fatalf("import characters failed: %v", err)
	}
	log.Printf("✅ imported %d characters from %s", len(chars), *in)
}
