package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const IdentityServiceName = "rentable.identity.v1.Identity"

// Full method names, used by interceptors.
const (
	IdentitySignUp        = "/" + IdentityServiceName + "/SignUp"
	IdentitySignIn        = "/" + IdentityServiceName + "/SignIn"
	IdentityVerifyOTP     = "/" + IdentityServiceName + "/VerifyOTP"
	IdentityResend        = "/" + IdentityServiceName + "/Resend"
	IdentitySignInWithOTP = "/" + IdentityServiceName + "/SignInWithOTP"
	IdentityRefreshToken  = "/" + IdentityServiceName + "/RefreshToken"
	IdentitySignOut       = "/" + IdentityServiceName + "/SignOut"
	IdentityGetUser       = "/" + IdentityServiceName + "/GetUser"
	IdentityPing          = "/" + IdentityServiceName + "/Ping"
)

// IdentityServer is implemented by the backend's credential service.
type IdentityServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	VerifyOTP(context.Context, *VerifyOTPRequest) (*SessionResponse, error)
	Resend(context.Context, *EmailRequest) (*Empty, error)
	SignInWithOTP(context.Context, *EmailRequest) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*SessionResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
	GetUser(context.Context, *Empty) (*UserResponse, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(IdentityServiceName, "SignUp", IdentityServer.SignUp),
		unary(IdentityServiceName, "SignIn", IdentityServer.SignIn),
		unary(IdentityServiceName, "VerifyOTP", IdentityServer.VerifyOTP),
		unary(IdentityServiceName, "Resend", IdentityServer.Resend),
		unary(IdentityServiceName, "SignInWithOTP", IdentityServer.SignInWithOTP),
		unary(IdentityServiceName, "RefreshToken", IdentityServer.RefreshToken),
		unary(IdentityServiceName, "SignOut", IdentityServer.SignOut),
		unary(IdentityServiceName, "GetUser", IdentityServer.GetUser),
		unary(IdentityServiceName, "Ping", IdentityServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentable/identity.v1",
}

func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&IdentityServiceDesc, srv)
}

type IdentityClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	VerifyOTP(ctx context.Context, in *VerifyOTPRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	Resend(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error)
	SignInWithOTP(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	GetUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
}

type identityClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient {
	return &identityClient{cc: cc}
}

func (c *identityClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, IdentitySignUp, in, opts)
}

func (c *identityClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentitySignIn, in, opts)
}

func (c *identityClient) VerifyOTP(ctx context.Context, in *VerifyOTPRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentityVerifyOTP, in, opts)
}

func (c *identityClient) Resend(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentityResend, in, opts)
}

func (c *identityClient) SignInWithOTP(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentitySignInWithOTP, in, opts)
}

func (c *identityClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentityRefreshToken, in, opts)
}

func (c *identityClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentitySignOut, in, opts)
}

func (c *identityClient) GetUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, IdentityGetUser, in, opts)
}

func (c *identityClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, IdentityPing, in, opts)
}
