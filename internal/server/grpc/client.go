package grpc

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the postboard service over conn. Errors are gRPC statuses.
type Client struct {
	conn     grpc.ClientConnInterface
	tokenKey string
	token    string
}

// NewClient returns an anonymous client. tokenKey is the metadata key the
// server reads the access token from.
func NewClient(conn grpc.ClientConnInterface, tokenKey string) *Client {
	return &Client{conn: conn, tokenKey: tokenKey}
}

// WithToken returns a copy of c that sends token on every call.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, c.tokenKey, c.token)
	}
	return c.conn.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) Register(ctx context.Context, req services.RegisterRequest) (*SessionResponse, error) {
	out := &SessionResponse{}
	if err := c.invoke(ctx, "Register", &req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, req services.LoginRequest) (*SessionResponse, error) {
	out := &SessionResponse{}
	if err := c.invoke(ctx, "Login", &req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	out := &models.User{}
	if err := c.invoke(ctx, "Profile", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, in services.PostInput) (*models.Post, error) {
	out := &models.Post{}
	if err := c.invoke(ctx, "CreatePost", &in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	out := &models.Post{}
	if err := c.invoke(ctx, "GetPost", &PostIDRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPosts(ctx context.Context, p models.Pagination) ([]*models.Post, error) {
	out := &PostList{}
	if err := c.invoke(ctx, "ListPosts", &p, out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, in services.PostInput) (*models.Post, error) {
	out := &models.Post{}
	req := &UpdatePostRequest{ID: id, Title: in.Title, Content: in.Content}
	if err := c.invoke(ctx, "UpdatePost", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.invoke(ctx, "DeletePost", &PostIDRequest{ID: id}, &Empty{})
}
