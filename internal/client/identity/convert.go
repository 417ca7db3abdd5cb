package identity

import (
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/rpc"
)

func toUser(u rpc.User) models.SessionUser {
	return models.SessionUser{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
	}
}

func fromUser(u models.SessionUser) rpc.User {
	return rpc.User{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
	}
}

// toSession prefers the absolute expiry and falls back to ExpiresIn.
func toSession(s rpc.Session, now time.Time) *models.Session {
	out := &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         toUser(s.User),
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return out
}

func fromSession(s *models.Session) rpc.Session {
	out := rpc.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         fromUser(s.User),
	}
	if !s.ExpiresAt.IsZero() {
		out.ExpiresAt = s.ExpiresAt.Unix()
	}
	return out
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.User.EmailConfirmedAt != nil {
		t := *s.User.EmailConfirmedAt
		c.User.EmailConfirmedAt = &t
	}
	return &c
}
