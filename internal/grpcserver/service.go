package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"rickdex/pkg/models"
)

const ServiceName = "rickdex.CharacterService"

type ListCharactersRequest struct {
	Name string `json:"name,omitempty"`
	Page int    `json:"page,omitempty"`
}

type ListCharactersResponse struct {
	Info    models.PageInfo    `json:"info"`
	Results []models.Character `json:"results"`
}

type GetCharacterRequest struct {
	ID int `json:"id"`
}

type GetCharacterResponse struct {
	Character *models.Character `json:"character"`
}

type SearchCacheRequest struct {
	Q       string `json:"q,omitempty"`
	Status  string `json:"status,omitempty"`
	Species string `json:"species,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

type SearchCacheResponse struct {
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Items  []models.Character `json:"items"`
}

// CharacterServiceServer is implemented by Server.
type CharacterServiceServer interface {
	ListCharacters(context.Context, *ListCharactersRequest) (*ListCharactersResponse, error)
	GetCharacter(context.Context, *GetCharacterRequest) (*GetCharacterResponse, error)
	SearchCache(context.Context, *SearchCacheRequest) (*SearchCacheResponse, error)
}

func RegisterCharacterServiceServer(s grpc.ServiceRegistrar, srv CharacterServiceServer) {
	s.RegisterService(&characterServiceDesc, srv)
}

var characterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CharacterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCharacters", Handler: listCharactersHandler},
		{MethodName: "GetCharacter", Handler: getCharacterHandler},
		{MethodName: "SearchCache", Handler: searchCacheHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rickdex/character.proto",
}

func listCharactersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListCharactersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CharacterServiceServer).ListCharacters(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListCharacters"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CharacterServiceServer).ListCharacters(ctx, req.(*ListCharactersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getCharacterHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCharacterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CharacterServiceServer).GetCharacter(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetCharacter"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CharacterServiceServer).GetCharacter(ctx, req.(*GetCharacterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchCacheHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SearchCacheRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CharacterServiceServer).SearchCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/SearchCache"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CharacterServiceServer).SearchCache(ctx, req.(*SearchCacheRequest))
	}
	return interceptor(ctx, in, info, handler)
}
