package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a CharacterService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection that speaks the JSON codec.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(ContentSubtype)),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}

func (c *Client) ListCharacters(ctx context.Context, req *ListCharactersRequest) (*ListCharactersResponse, error) {
	out := new(ListCharactersResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ListCharacters", req, out, grpc.CallContentSubtype(ContentSubtype)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharacter(ctx context.Context, req *GetCharacterRequest) (*GetCharacterResponse, error) {
	out := new(GetCharacterResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetCharacter", req, out, grpc.CallContentSubtype(ContentSubtype)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchCache(ctx context.Context, req *SearchCacheRequest) (*SearchCacheResponse, error) {
	out := new(SearchCacheResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SearchCache", req, out, grpc.CallContentSubtype(ContentSubtype)); err != nil {
		return nil, err
	}
	return out, nil
}
