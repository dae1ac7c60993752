package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/service"
)

// GetUserRequest is the identity lookup the chat service makes on a
// replica cache miss.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// UserProto is the wire shape of a user.User.
type UserProto struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type GetUserResponse struct {
	User UserProto `json:"user"`
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "chatgrid.identity.v1.IdentityService",
	HandlerType: (*identityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUser",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(GetUserRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(identityServer).GetUser(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chatgrid.identity.v1.IdentityService/GetUser"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(identityServer).GetUser(ctx, req.(*GetUserRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}

type identityServer interface {
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
}

// IdentityServer implements the IdentityService gRPC service, backed by
// UserService.
type IdentityServer struct {
	users *service.UserService
}

func NewIdentityServer(users *service.UserService) *IdentityServer {
	return &IdentityServer{users: users}
}

// RegisterIdentityServer mounts the identity service on a grpc.Server.
func RegisterIdentityServer(s *grpc.Server, srv *IdentityServer) {
	s.RegisterService(&serviceDesc, srv)
}

func (s *IdentityServer) GetUser(ctx context.Context, req *GetUserRequest) (*GetUserResponse, error) {
	id, err := user.ParseID(req.UserID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid user_id: %v", err)
	}

	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, status.Errorf(codes.NotFound, "user not found: %v", err)
	}

	return &GetUserResponse{User: UserProto{ID: u.ID.String(), Username: u.Username.String(), Email: u.Email.String()}}, nil
}

// IdentityClient is the chat service's stub for the replica-miss
// fallback: when the local user replica lacks a row, it calls this
// directly against the identity service rather than blocking the read on
// consumer lag.
type IdentityClient struct {
	conn *grpc.ClientConn
}

func DialIdentityClient(addr string) (*IdentityClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc: dialing identity service: %w", err)
	}
	return &IdentityClient{conn: conn}, nil
}

func (c *IdentityClient) GetUser(ctx context.Context, id user.ID) (user.User, error) {
	req := &GetUserRequest{UserID: id.String()}
	resp := new(GetUserResponse)
	if err := c.conn.Invoke(ctx, "/chatgrid.identity.v1.IdentityService/GetUser", req, resp); err != nil {
		return user.User{}, fmt.Errorf("grpc: GetUser: %w", err)
	}

	username, err := user.NewUsername(resp.User.Username)
	if err != nil {
		return user.User{}, fmt.Errorf("grpc: GetUser: invalid username in response: %w", err)
	}
	email, err := user.NewEmailAddress(resp.User.Email)
	if err != nil {
		return user.User{}, fmt.Errorf("grpc: GetUser: invalid email in response: %w", err)
	}
	parsedID, err := user.ParseID(resp.User.ID)
	if err != nil {
		return user.User{}, fmt.Errorf("grpc: GetUser: invalid id in response: %w", err)
	}

	return user.User{ID: parsedID, Username: username, Email: email}, nil
}

func (c *IdentityClient) Close() error {
	return c.conn.Close()
}
