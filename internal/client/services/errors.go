package services

import (
	"errors"
	"fmt"
	"strings"
)

// AuthErrorKind enumerates the closed set of failures AuthService reports.
type AuthErrorKind string

const (
	KindEmailAlreadyExists AuthErrorKind = "emailAlreadyExists"
	KindInvalidCredentials AuthErrorKind = "invalidCredentials"
	KindEmailNotVerified   AuthErrorKind = "emailNotVerified"
	KindUserNotFound       AuthErrorKind = "userNotFound"
	KindNetwork            AuthErrorKind = "networkError"
	KindInvalidData        AuthErrorKind = "invalidData"
	KindUploadFailed       AuthErrorKind = "uploadFailed"
	KindUnknown            AuthErrorKind = "unknown"
)

// AuthError is the only error type AuthService returns. Error() is the
// user-facing description; Cause keeps the underlying failure for logs.
type AuthError struct {
	Kind  AuthErrorKind
	Cause error
}

var (
	ErrEmailAlreadyExists = &AuthError{Kind: KindEmailAlreadyExists}
	ErrInvalidCredentials = &AuthError{Kind: KindInvalidCredentials}
	ErrEmailNotVerified   = &AuthError{Kind: KindEmailNotVerified}
	ErrUserNotFound       = &AuthError{Kind: KindUserNotFound}
	ErrNetwork            = &AuthError{Kind: KindNetwork}
	ErrInvalidData        = &AuthError{Kind: KindInvalidData}
	ErrUploadFailed       = &AuthError{Kind: KindUploadFailed}
	ErrUnknown            = &AuthError{Kind: KindUnknown}
)

// Unknown wraps an unclassified failure.
func Unknown(cause error) *AuthError {
	return &AuthError{Kind: KindUnknown, Cause: cause}
}

func newAuthError(kind AuthErrorKind, cause error) *AuthError {
	return &AuthError{Kind: kind, Cause: cause}
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case KindEmailAlreadyExists:
		return "This email is already registered. Please sign in instead."
	case KindInvalidCredentials:
		return "Invalid email or password. Please try again."
	case KindEmailNotVerified:
		return "Please verify your email before signing in."
	case KindUserNotFound:
		return "User profile not found. Please contact support."
	case KindNetwork:
		return "Network connection error. Please check your internet connection."
	case KindInvalidData:
		return "Invalid data received. Please try again."
	case KindUploadFailed:
		return "Failed to upload profile image. Please try again."
	default:
		if e.Cause == nil {
			return "An error occurred"
		}
		return fmt.Sprintf("An error occurred: %s", e.Cause.Error())
	}
}

func (e *AuthError) Unwrap() error { return e.Cause }

// Is matches any *AuthError of the same kind, so errors.Is(err,
// ErrInvalidCredentials) holds whatever the cause.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of an AuthError in err's chain, or "".
func KindOf(err error) AuthErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isConnectivity(msg string) bool {
	return containsAny(msg, "network", "connection")
}

// Classifiers below inspect the lowercased error text in priority order.

func classifySignIn(err error) *AuthError {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "invalid login", "invalid credentials"):
		return newAuthError(KindInvalidCredentials, err)
	case containsAny(msg, "email not confirmed", "not verified"):
		return newAuthError(KindEmailNotVerified, err)
	case isConnectivity(msg):
		return newAuthError(KindNetwork, err)
	case strings.Contains(msg, "not found"):
		return newAuthError(KindUserNotFound, err)
	default:
		return Unknown(err)
	}
}

func classifySignUp(err error) *AuthError {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "already registered", "already exists"):
		return newAuthError(KindEmailAlreadyExists, err)
	case isConnectivity(msg):
		return newAuthError(KindNetwork, err)
	default:
		return Unknown(err)
	}
}

func classifyVerify(err error) *AuthError {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "invalid", "expired"):
		return newAuthError(KindInvalidCredentials, err)
	case isConnectivity(msg):
		return newAuthError(KindNetwork, err)
	default:
		return Unknown(err)
	}
}

func classifyUpload(err error) *AuthError {
	if isConnectivity(strings.ToLower(err.Error())) {
		return newAuthError(KindNetwork, err)
	}
	return newAuthError(KindUploadFailed, err)
}
