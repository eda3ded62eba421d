package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rickdex/internal/catalog"
	"rickdex/internal/directory"
	"rickdex/internal/grpcserver"
	"rickdex/pkg/database"
	"rickdex/pkg/models"
	"rickdex/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	global := flag.NewFlagSet("rickdex", flag.ExitOnError)
	apiURL := global.String("api", cfg.DirectoryBaseURL, "character directory base URL")
	server := global.String("server", "http://localhost"+cfg.HTTPAddr, "rickdex API server (remote)")
	rpcAddr := global.String("rpc", "localhost"+cfg.GRPCAddr, "rickdex gRPC address")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := directory.NewClient(*apiURL, cfg.HTTPTimeout)

	cmd := args[0]
	rest := args[1:]
	sub := ""
	if len(rest) > 0 {
		sub = rest[0]
	}

	switch cmd {
	case "search":
		handleSearch(ctx, client, rest)
	case "show":
		handleShow(ctx, client, rest)
	case "browse":
		handleBrowse(client, cfg.Debounce, rest)
	case "remote":
		handleRemote(ctx, *server)
	case "export":
		handleExport(ctx, cfg, sub, rest[min(1, len(rest)):])
	case "rpc":
		handleRPC(ctx, *rpcAddr, sub, rest[min(1, len(rest)):])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleSearch(ctx context.Context, client *directory.Client, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	name := fs.String("name", "", "name filter")
	page := fs.Int("page", 1, "page number")
	status := fs.String("status", "", "alive, dead or unknown")
	_ = fs.Parse(args)

	res, err := client.ListCharacters(ctx, directory.Query{Name: *name, Page: *page, Status: *status})
	if err != nil {
		if directory.IsNotFound(err) {
			fmt.Println(emptyMessage)
			return
		}
		log.Fatalf("search failed (%s): %v", directory.KindOf(err), err)
	}
	printPage(os.Stdout, *page, res.Info.Pages, res.Results, 0)
}

func handleShow(ctx context.Context, client *directory.Client, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int("id", 0, "character id")
	_ = fs.Parse(args)

	if *id < 1 {
		log.Fatal("id is required")
	}
	ch, err := client.GetCharacter(ctx, *id)
	if err != nil {
		if directory.IsNotFound(err) {
			log.Fatalf("character %d not found", *id)
		}
		log.Fatalf("show failed (%s): %v", directory.KindOf(err), err)
	}
	printCharacter(os.Stdout, *ch)
}

func handleExport(ctx context.Context, cfg utils.Config, sub string, args []string) {
	fs := flag.NewFlagSet("export "+sub, flag.ExitOnError)
	out := fs.String("out", "data/characters."+sub, "output path")
	status := fs.String("status", "", "only export characters with this status")
	_ = fs.Parse(args)

	var write func(string, []models.Character) error
	switch sub {
	case "json":
		write = catalog.WriteJSONFile
	case "csv":
		write = catalog.WriteCSVFile
	default:
		log.Fatal("usage: rickdex export <json|csv>")
	}

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	items, err := catalog.All(ctx, catalog.NewRepo(db), catalog.ListQuery{Status: *status})
	if err != nil {
		log.Fatalf("export %s failed: %v", sub, err)
	}
	if err := write(*out, items); err != nil {
		log.Fatalf("write %s failed: %v", sub, err)
	}
	log.Printf("✅ exported %d characters to %s", len(items), *out)
}

func handleRPC(ctx context.Context, addr, sub string, args []string) {
	conn, err := grpcserver.Dial(addr)
	if err != nil {
		log.Fatalf("grpc dial: %v", err)
	}
	defer conn.Close()
	rpc := grpcserver.NewClient(conn)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch sub {
	case "show":
		fs := flag.NewFlagSet("rpc show", flag.ExitOnError)
		id := fs.Int("id", 0, "character id")
		_ = fs.Parse(args)

		resp, err := rpc.GetCharacter(ctx, &grpcserver.GetCharacterRequest{ID: *id})
		if err != nil {
			log.Fatalf("rpc show failed: %v", err)
		}
		printCharacter(os.Stdout, *resp.Character)
	case "search":
		fs := flag.NewFlagSet("rpc search", flag.ExitOnError)
		name := fs.String("name", "", "name filter")
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)

		resp, err := rpc.ListCharacters(ctx, &grpcserver.ListCharactersRequest{Name: *name, Page: *page})
		if err != nil {
			log.Fatalf("rpc search failed: %v", err)
		}
		printPage(os.Stdout, *page, resp.Info.Pages, resp.Results, 0)
	case "cache":
		fs := flag.NewFlagSet("rpc cache", flag.ExitOnError)
		q := fs.String("q", "", "name substring")
		status := fs.String("status", "", "status filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		resp, err := rpc.SearchCache(ctx, &grpcserver.SearchCacheRequest{Q: *q, Status: *status, Limit: *limit, Offset: *offset})
		if err != nil {
			log.Fatalf("rpc cache failed: %v", err)
		}
		fmt.Printf("%d cached (showing %d from %d)\n", resp.Total, len(resp.Items), resp.Offset)
		printRows(os.Stdout, resp.Items, 0)
	default:
		log.Fatal("usage: rickdex rpc <show|search|cache>")
	}
}

func printUsage() {
	fmt.Println("usage: rickdex [-api URL] [-server URL] [-rpc ADDR] <command>")
	fmt.Println("")
	fmt.Println("  search  -name NAME -page N -status S   list one page of characters")
	fmt.Println("  show    -id ID                         show one character")
	fmt.Println("  browse                                 interactive search")
	fmt.Println("  remote                                 interactive search on the API server")
	fmt.Println("  export  <json|csv> -out PATH           dump the local catalog")
	fmt.Println("  rpc     <show|search|cache>            call the gRPC service")
}
