package grpcserver

import (
	"context"
	"log"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rickdex/internal/catalog"
	"rickdex/internal/directory"
)

type Server struct {
	Directory directory.Fetcher
	Catalog   *catalog.Repo
}

func NewServer(dir directory.Fetcher, repo *catalog.Repo) *Server {
	return &Server{Directory: dir, Catalog: repo}
}

func (s *Server) ListCharacters(ctx context.Context, req *ListCharactersRequest) (*ListCharactersResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	if req.Page < 0 {
		return nil, status.Error(codes.InvalidArgument, "page must not be negative; 0 means page 1")
	}

	page, err := s.Directory.ListCharacters(ctx, directory.Query{Name: strings.TrimSpace(req.Name), Page: req.Page})
	if err != nil {
		return nil, toStatus("list", err)
	}
	return &ListCharactersResponse{Info: page.Info, Results: page.Results}, nil
}

func (s *Server) GetCharacter(ctx context.Context, req *GetCharacterRequest) (*GetCharacterResponse, error) {
	if req == nil || req.ID < 1 {
		return nil, status.Error(codes.InvalidArgument, "id must be >= 1")
	}

	ch, err := s.Directory.GetCharacter(ctx, req.ID)
	if err != nil {
		return nil, toStatus("get", err)
	}
	return &GetCharacterResponse{Character: ch}, nil
}

func (s *Server) SearchCache(ctx context.Context, req *SearchCacheRequest) (*SearchCacheResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	if req.Limit < 0 || req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit and offset must be >= 0")
	}
	q := catalog.ListQuery{
		Q:       strings.TrimSpace(req.Q),
		Status:  strings.TrimSpace(req.Status),
		Species: strings.TrimSpace(req.Species),
		Gender:  strings.TrimSpace(req.Gender),
		Limit:   req.Limit,
		Offset:  req.Offset,
	}

	total, err := s.Catalog.Count(ctx, q)
	if err != nil {
		return nil, status.Error(codes.Internal, "count failed")
	}
	items, err := s.Catalog.List(ctx, q)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}
	return &SearchCacheResponse{Total: total, Limit: catalog.NormalizeLimit(q.Limit), Offset: q.Offset, Items: items}, nil
}

func toStatus(op string, err error) error {
	if directory.IsNotFound(err) {
		return status.Error(codes.NotFound, "not found")
	}
	log.Printf("[grpc] %s: %v", op, err)
	return status.Errorf(codes.Unavailable, "%s: directory %s", op, directory.KindOf(err))
}
