package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Messages clients match on. They follow the wording of hosted auth
// providers so one classifier serves both.
const (
	msgInvalidCredentials  = "Invalid login credentials"
	msgEmailNotConfirmed   = "Email not confirmed"
	msgUserRegistered      = "User already registered"
	msgOTPInvalid          = "Token has expired or is invalid"
	msgRefreshTokenInvalid = "Invalid Refresh Token: Refresh Token Not Found"
	msgDuplicateRow        = "duplicate key value violates unique constraint"
	msgObjectExists        = "The resource already exists"
	msgBucketNotFound      = "Bucket not found"
	msgRowLevelSecurity    = "new row violates row-level security policy"
	msgUserNotFound        = "User from sub claim in JWT does not exist"
	msgEmailDelivery       = "Error sending email"
	msgInternal            = "internal error"
)

// toStatus maps a service error to a gRPC status. Unexpected errors are
// logged and hidden behind a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, msgInvalidCredentials)
	case errors.Is(err, services.ErrEmailNotConfirmed):
		return status.Error(codes.FailedPrecondition, msgEmailNotConfirmed)
	case errors.Is(err, services.ErrUserAlreadyRegistered):
		return status.Error(codes.AlreadyExists, msgUserRegistered)
	case errors.Is(err, services.ErrOTPInvalid):
		return status.Error(codes.Unauthenticated, msgOTPInvalid)
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return status.Error(codes.Unauthenticated, msgRefreshTokenInvalid)
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, services.ErrObjectExists):
		return status.Error(codes.AlreadyExists, msgObjectExists)
	case errors.Is(err, services.ErrUnknownBucket):
		return status.Error(codes.NotFound, msgBucketNotFound)
	case errors.Is(err, services.ErrEmailDelivery):
		return status.Error(codes.Internal, msgEmailDelivery)
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, validationMessage(err))
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, msgDuplicateRow)
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, msgRowLevelSecurity)
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, msgUserNotFound)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, msgInternal)
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, common.ErrorValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(common.ErrorValidation.Error())+2:]
	}
	if msg == "" {
		return common.ErrorValidation.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
