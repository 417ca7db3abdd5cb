// Package grpc exposes the identity, profiles and storage services over
// gRPC with the JSON codec from internal/rpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"github.com/dmitrijs2005/rentable/internal/server/metrics"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	"github.com/dmitrijs2005/rentable/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the subset of services.IdentityService used here.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	VerifyOTP(ctx context.Context, email, token, otpType string) (*services.Session, error)
	Resend(ctx context.Context, email string) error
	SignInWithOTP(ctx context.Context, email string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type ProfileService interface {
	Select(ctx context.Context, column, value string) ([]models.Profile, error)
	Insert(ctx context.Context, callerID string, p *models.Profile) error
	Update(ctx context.Context, callerID, id string, patch models.ProfilePatch) (int64, error)
}

type StorageService interface {
	CreateUploadURL(ctx context.Context, callerID, bucket, path, contentType string, upsert bool) (string, error)
}

// GRPCServer implements rpc.IdentityServer, rpc.ProfilesServer and
// rpc.StorageServer.
type GRPCServer struct {
	address   string
	identity  IdentityService
	profiles  ProfileService
	storage   StorageService
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer wires the services. m may be nil to disable RPC metrics.
func NewGRPCServer(a string, l logging.Logger, is IdentityService, ps ProfileService, ss StorageService,
	m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  is,
		profiles:  ps,
		storage:   ss,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the interceptor chain and every
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	rpc.RegisterIdentityServer(srv, s)
	rpc.RegisterProfilesServer(srv, s)
	rpc.RegisterStorageServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
