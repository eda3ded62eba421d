package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"rickdex/internal/browse"
	"rickdex/internal/catalog"
	"rickdex/internal/directory"
	"rickdex/internal/grpcserver"
	"rickdex/internal/session"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbCfg := database.DefaultConfig(cfg.DBPath)
	db := database.MustOpen(dbCfg)
	defer db.Close()

	repo := catalog.NewRepo(db)
	dir := directory.NewCached(directory.NewClient(cfg.DirectoryBaseURL, cfg.HTTPTimeout), repo)

	registry := session.NewRegistry(func() *browse.Controller {
		return browse.NewController(dir, browse.Options{Debounce: cfg.Debounce})
	}, cfg.Session.TTL)
	defer registry.Close()

	tokens := session.TokenService{
		Secret:   []byte(cfg.Session.Secret),
		Issuer:   cfg.Session.Issuer,
		Duration: cfg.Session.TTL,
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := registry.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"sessions":   stats.Sessions,
				"ws_clients": stats.Connections,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"sessions":   stats.Sessions,
			"ws_clients": stats.Connections,
		})
	})

	// Live directory, read-through the catalog
	router.GET("/characters", func(c *gin.Context) {
		q := directory.Query{
			Name: c.Query("name"),
			Page: catalog.ParseInt(c.Query("page"), 1),
		}
		page, err := dir.ListCharacters(c.Request.Context(), q)
		if err != nil {
			if directory.IsNotFound(err) {
				c.JSON(http.StatusOK, gin.H{"info": gin.H{"count": 0, "pages": 1}, "results": []any{}})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": directory.KindOf(err).String()})
			return
		}
		c.JSON(http.StatusOK, page)
	})

	router.GET("/characters/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
			return
		}
		ch, err := dir.GetCharacter(c.Request.Context(), id)
		if err != nil {
			if directory.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": directory.KindOf(err).String()})
			return
		}
		c.JSON(http.StatusOK, ch)
	})

	catalog.NewHandler(repo).RegisterRoutes(router.Group("/cache/characters"))
	session.NewHandler(registry, tokens, dir).RegisterRoutes(router.Group("/sessions"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	grpcSrv := grpc.NewServer()
	grpcserver.RegisterCharacterServiceServer(grpcSrv, grpcserver.NewServer(dir, repo))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP API server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		return grpcSrv.Serve(lis)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if n := registry.Sweep(now); n > 0 {
					log.Printf("[session] swept %d idle sessions", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown error: %v", err)
		}
		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}
	log.Println("servers stopped")
}
