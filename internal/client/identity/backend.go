// Package identity is the client side of the credential and session
// backend. It owns the current session, keeps it in device storage, and
// pushes auth events to subscribers.
package identity

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/rentable/internal/client/models"
)

var ErrInvalidCallback = errors.New("callback url carries no session")

// Backend is what the session core needs from the credential backend.
// Errors carry the backend's own text; transport failures wrap
// client.ErrUnavailable.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (*models.SessionUser, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	VerifyOTP(ctx context.Context, email, token, otpType string) (*models.Session, error)
	Resend(ctx context.Context, email string) error
	SignInWithOTP(ctx context.Context, email string) error
	SignOut(ctx context.Context) error

	// CurrentSession returns a copy of the cached session, or nil. It never
	// touches the network.
	CurrentSession() *models.Session
	RefreshUser(ctx context.Context) (*models.SessionUser, error)
	SessionFromURL(ctx context.Context, rawURL string) (*models.Session, error)
	Ping(ctx context.Context) error

	// Subscribe registers for auth events. The returned func unregisters
	// and closes the channel.
	Subscribe() (<-chan models.AuthEvent, func())
}
