package grpcserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"rickdex/internal/catalog"
	"rickdex/internal/directory"
	"rickdex/pkg/database"
	"rickdex/pkg/models"
)

type stubDirectory struct {
	err error
}

func (s stubDirectory) ListCharacters(ctx context.Context, q directory.Query) (*models.CharacterPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if q.Name == "nobody" {
		return nil, &directory.Error{Op: "list", Kind: directory.ServiceError, Status: http.StatusNotFound, Err: errors.New("There is nothing here")}
	}
	return &models.CharacterPage{
		Info:    models.PageInfo{Count: 1, Pages: 1},
		Results: []models.Character{{ID: 1, Name: "Rick Sanchez", Status: "Alive"}},
	}, nil
}

func (s stubDirectory) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id != 1 {
		return nil, &directory.Error{Op: "get", Kind: directory.ServiceError, Status: http.StatusNotFound, Err: errors.New("Character not found")}
	}
	return &models.Character{ID: 1, Name: "Rick Sanchez"}, nil
}

func newTestClient(t *testing.T, dir directory.Fetcher) *Client {
	t.Helper()
	db, err := database.OpenMigrated(database.Config{Path: filepath.Join(t.TempDir(), "grpc.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := catalog.NewRepo(db)
	seed := []models.Character{
		{ID: 1, Name: "Rick Sanchez", Status: "Alive"},
		{ID: 8, Name: "Adjudicator Rick", Status: "Dead"},
		{ID: 2, Name: "Morty Smith", Status: "Alive"},
	}
	if err := repo.Upsert(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCharacterServiceServer(srv, NewServer(dir, repo))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func TestListCharacters(t *testing.T) {
	client := newTestClient(t, stubDirectory{})
	ctx := context.Background()

	resp, err := client.ListCharacters(ctx, &ListCharactersRequest{Name: "rick"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Info.Pages != 1 || len(resp.Results) != 1 || resp.Results[0].Name != "Rick Sanchez" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	_, err = client.ListCharacters(ctx, &ListCharactersRequest{Name: "nobody"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("Expected NotFound, got %v", err)
	}

	_, err = client.ListCharacters(ctx, &ListCharactersRequest{Page: -1})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument, got %v", err)
	} else if !strings.Contains(status.Convert(err).Message(), "0 means page 1") {
		t.Errorf("Expected message to explain page 0, got %q", status.Convert(err).Message())
	}

	if _, err := client.ListCharacters(ctx, &ListCharactersRequest{Page: 0}); err != nil {
		t.Errorf("Expected page 0 to be served as page 1, got %v", err)
	}
}

func TestGetCharacter(t *testing.T) {
	client := newTestClient(t, stubDirectory{})
	ctx := context.Background()

	resp, err := client.GetCharacter(ctx, &GetCharacterRequest{ID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Character == nil || resp.Character.Name != "Rick Sanchez" {
		t.Errorf("Unexpected character: %+v", resp.Character)
	}

	tests := []struct {
		id   int
		code codes.Code
	}{
		{0, codes.InvalidArgument},
		{42, codes.NotFound},
	}
	for _, tt := range tests {
		_, err := client.GetCharacter(ctx, &GetCharacterRequest{ID: tt.id})
		if status.Code(err) != tt.code {
			t.Errorf("id %d: expected %s, got %v", tt.id, tt.code, err)
		}
	}
}

func TestUpstreamFailureIsUnavailable(t *testing.T) {
	down := &directory.Error{Op: "list", Kind: directory.NetworkFailure, Err: errors.New("connection refused")}
	client := newTestClient(t, stubDirectory{err: down})

	_, err := client.ListCharacters(context.Background(), &ListCharactersRequest{})
	if status.Code(err) != codes.Unavailable {
		t.Errorf("Expected Unavailable, got %v", err)
	}
}

func TestSearchCache(t *testing.T) {
	client := newTestClient(t, stubDirectory{})
	ctx := context.Background()

	resp, err := client.SearchCache(ctx, &SearchCacheRequest{Q: "rick"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("Expected 2 Ricks, got total=%d items=%d", resp.Total, len(resp.Items))
	}
	if resp.Limit != 20 {
		t.Errorf("Expected default limit 20, got %d", resp.Limit)
	}

	resp, err = client.SearchCache(ctx, &SearchCacheRequest{Status: "dead"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != 8 {
		t.Errorf("Expected only Adjudicator Rick, got %+v", resp.Items)
	}

	_, err = client.SearchCache(ctx, &SearchCacheRequest{Offset: -1})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument, got %v", err)
	}
}
