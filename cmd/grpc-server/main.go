package main

import (
	"log"
	"net"

	"google.golang.org/grpc"

	"rickdex/internal/catalog"
	"rickdex/internal/directory"
	"rickdex/internal/grpcserver"
	"rickdex/pkg/database"
	"rickdex/pkg/utils"
)

// grpc-server runs only the gRPC surface, without HTTP or sessions.
func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	repo := catalog.NewRepo(db)
	dir := directory.NewCached(directory.NewClient(cfg.DirectoryBaseURL, cfg.HTTPTimeout), repo)

	grpcServer := grpc.NewServer()
	grpcserver.RegisterCharacterServiceServer(grpcServer, grpcserver.NewServer(dir, repo))

	log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalf("grpc server stopped: %v", err)
	}
}
