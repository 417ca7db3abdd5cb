package grpc

import (
	"context"

	"github.com/dmitrijs2005/rentable/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.SignUpResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign up", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &rpc.SignUpResponse{User: userToRPC(user)}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.SessionResponse, error) {
	session, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign in", err)
	}
	return &rpc.SessionResponse{Session: sessionToRPC(session)}, nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *rpc.VerifyOTPRequest) (*rpc.SessionResponse, error) {
	session, err := s.identity.VerifyOTP(ctx, req.Email, req.Token, req.Type)
	if err != nil {
		return nil, s.toStatus(ctx, "verify otp", err)
	}
	s.logger.Info(ctx, "Code verified", "user_id", session.User.ID, "type", req.Type)
	return &rpc.SessionResponse{Session: sessionToRPC(session)}, nil
}

func (s *GRPCServer) Resend(ctx context.Context, req *rpc.EmailRequest) (*rpc.Empty, error) {
	if err := s.identity.Resend(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "resend", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) SignInWithOTP(ctx context.Context, req *rpc.EmailRequest) (*rpc.Empty, error) {
	if err := s.identity.SignInWithOTP(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "magic link", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.SessionResponse, error) {
	session, err := s.identity.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}
	return &rpc.SessionResponse{Session: sessionToRPC(session)}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	if err := s.identity.SignOut(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, _ *rpc.Empty) (*rpc.UserResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "get user", err)
	}
	return &rpc.UserResponse{User: userToRPC(user)}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Select(ctx context.Context, req *rpc.SelectProfilesRequest) (*rpc.SelectProfilesResponse, error) {
	rows, err := s.profiles.Select(ctx, req.Column, req.Value)
	if err != nil {
		return nil, s.toStatus(ctx, "select profiles", err)
	}
	out := make([]rpc.Profile, 0, len(rows))
	for _, p := range rows {
		out = append(out, profileToRPC(p))
	}
	return &rpc.SelectProfilesResponse{Rows: out}, nil
}

func (s *GRPCServer) Insert(ctx context.Context, req *rpc.InsertProfileRequest) (*rpc.Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	p := profileFromRPC(req.Profile)
	if err := s.profiles.Insert(ctx, userID, &p); err != nil {
		return nil, s.toStatus(ctx, "insert profile", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Update(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.UpdateProfileResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	n, err := s.profiles.Update(ctx, userID, req.ID, patchFromRPC(req.Patch))
	if err != nil {
		return nil, s.toStatus(ctx, "update profile", err)
	}
	return &rpc.UpdateProfileResponse{Rows: n}, nil
}

func (s *GRPCServer) CreateUploadURL(ctx context.Context, req *rpc.CreateUploadURLRequest) (*rpc.CreateUploadURLResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	url, err := s.storage.CreateUploadURL(ctx, userID, req.Bucket, req.Path, req.ContentType, req.Upsert)
	if err != nil {
		return nil, s.toStatus(ctx, "create upload url", err)
	}
	return &rpc.CreateUploadURLResponse{URL: url}, nil
}
