package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"rickdex/internal/catalog"
	"rickdex/internal/mirror"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

// mirror-server replays the local catalog with the directory's wire shape,
// so RICKDEX_API_BASE_URL can point at it for offline demos.
func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	router := gin.Default()
	mirror.NewHandler(catalog.NewRepo(db)).RegisterRoutes(router.Group("/api"))

	log.Printf("mirror-server listening on http://localhost%s/api", cfg.MirrorAddr)
	log.Fatal(router.Run(cfg.MirrorAddr))
}
