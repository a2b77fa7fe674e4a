package grpc

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/services"
	"google.golang.org/grpc"
)

// PostboardServiceName is the full gRPC name of the account and post service.
const PostboardServiceName = "postboard.v1.Postboard"

// Empty is the request or response of calls that carry no data.
type Empty struct{}

type SessionResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type PostIDRequest struct {
	ID string `json:"id"`
}

type UpdatePostRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PostList struct {
	Posts []*models.Post `json:"posts"`
}

// PostboardServer is implemented by *GRPCServer.
type PostboardServer interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req *services.LoginRequest) (*SessionResponse, error)
	Profile(ctx context.Context, req *Empty) (*models.User, error)
	CreatePost(ctx context.Context, req *services.PostInput) (*models.Post, error)
	GetPost(ctx context.Context, req *PostIDRequest) (*models.Post, error)
	ListPosts(ctx context.Context, req *models.Pagination) (*PostList, error)
	UpdatePost(ctx context.Context, req *UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, req *PostIDRequest) (*Empty, error)
}

var postboardServiceDesc = grpc.ServiceDesc{
	ServiceName: PostboardServiceName,
	HandlerType: (*PostboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Register", PostboardServer.Register),
		unaryMethod("Login", PostboardServer.Login),
		unaryMethod("Profile", PostboardServer.Profile),
		unaryMethod("CreatePost", PostboardServer.CreatePost),
		unaryMethod("GetPost", PostboardServer.GetPost),
		unaryMethod("ListPosts", PostboardServer.ListPosts),
		unaryMethod("UpdatePost", PostboardServer.UpdatePost),
		unaryMethod("DeletePost", PostboardServer.DeletePost),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "postboard/v1",
}

func fullMethod(name string) string {
	return "/" + PostboardServiceName + "/" + name
}

// unaryMethod adapts a typed handler to grpc.MethodDesc the way generated
// code does: decode, then run through the interceptor chain.
func unaryMethod[Req, Resp any](name string, call func(PostboardServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PostboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(PostboardServer), ctx, req.(*Req))
			})
		},
	}
}
