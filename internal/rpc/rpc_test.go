package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeIdentity struct {
	IdentityServer

	lastSignIn *SignInRequest
	signInErr  error
}

func (f *fakeIdentity) SignIn(_ context.Context, in *SignInRequest) (*SessionResponse, error) {
	f.lastSignIn = in
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	confirmed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &SessionResponse{Session: Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresIn:    3600,
		User:         User{ID: "u1", Email: in.Email, EmailConfirmedAt: &confirmed},
	}}, nil
}

func (f *fakeIdentity) Ping(context.Context, *Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func dialBufconn(t *testing.T, register func(*grpc.Server), opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(opts...)
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestIdentity_RoundTripOverJSONCodec(t *testing.T) {
	fake := &fakeIdentity{}
	conn := dialBufconn(t, func(s *grpc.Server) { RegisterIdentityServer(s, fake) })
	client := NewIdentityClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "pw123456"})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", fake.lastSignIn.Email)
	require.Equal(t, "u1", resp.Session.User.ID)
	require.NotNil(t, resp.Session.User.EmailConfirmedAt)
	require.True(t, resp.Session.User.EmailConfirmedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))

	ping, err := client.Ping(ctx, &Empty{})
	require.NoError(t, err)
	require.Equal(t, "OK", ping.Status)
}

func TestIdentity_StatusErrorsPropagate(t *testing.T) {
	fake := &fakeIdentity{signInErr: status.Error(codes.Unauthenticated, "Invalid login credentials")}
	conn := dialBufconn(t, func(s *grpc.Server) { RegisterIdentityServer(s, fake) })

	_, err := NewIdentityClient(conn).SignIn(context.Background(), &SignInRequest{Email: "a@b.com", Password: "wrong"})
	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.Unauthenticated, st.Code())
	require.Equal(t, "Invalid login credentials", st.Message())
}

func TestUnary_PassesFullMethodToInterceptor(t *testing.T) {
	var seen []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	conn := dialBufconn(t, func(s *grpc.Server) { RegisterIdentityServer(s, &fakeIdentity{}) }, grpc.UnaryInterceptor(interceptor))

	_, err := NewIdentityClient(conn).Ping(context.Background(), &Empty{})
	require.NoError(t, err)
	require.Equal(t, []string{IdentityPing}, seen)
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	require.Equal(t, CodecName, c.Name())

	b, err := c.Marshal(&CreateUploadURLRequest{Bucket: "avatars", Path: "u1/profile.jpg", ContentType: "image/jpeg", Upsert: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"bucket":"avatars","path":"u1/profile.jpg","content_type":"image/jpeg","upsert":true}`, string(b))

	var out CreateUploadURLRequest
	require.NoError(t, c.Unmarshal(b, &out))
	require.True(t, out.Upsert)
}
