package models

import "time"

// SessionUser is the identity a session belongs to.
type SessionUser struct {
	ID               string
	Email            string
	EmailConfirmedAt *time.Time
}

// Session is credential material owned by the identity backend client.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         SessionUser
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// EmailConfirmed reports whether the identity has a confirmed email.
func (s *Session) EmailConfirmed() bool {
	return s.User.EmailConfirmedAt != nil
}

// AuthEventKind names a change pushed by the identity backend.
type AuthEventKind string

const (
	AuthEventSignedIn         AuthEventKind = "signedIn"
	AuthEventSignedOut        AuthEventKind = "signedOut"
	AuthEventUserUpdated      AuthEventKind = "userUpdated"
	AuthEventTokenRefreshed   AuthEventKind = "tokenRefreshed"
	AuthEventPasswordRecovery AuthEventKind = "passwordRecovery"
	AuthEventInitialSession   AuthEventKind = "initialSession"
)

// AuthEvent pairs an event with the session current after it (nil when
// signed out).
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
