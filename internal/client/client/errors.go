package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrUnavailable marks transport failures. Its text is what callers
	// classify as a connectivity problem.
	ErrUnavailable = errors.New("network connection error")
	ErrNoSession   = errors.New("no current session")
)

// APIError is a backend rejection. Message is the backend's own text.
type APIError struct {
	Code    codes.Code
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// MapError converts a gRPC call error into ErrUnavailable (wrapped) or an
// *APIError. Non-status errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return &APIError{Code: st.Code(), Message: st.Message()}
	}
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code codes.Code) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
