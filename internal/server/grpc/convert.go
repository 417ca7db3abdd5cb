package grpc

import (
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	"github.com/dmitrijs2005/rentable/internal/server/services"
)

func userToRPC(u *models.User) rpc.User {
	if u == nil {
		return rpc.User{}
	}
	return rpc.User{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}

func sessionToRPC(s *services.Session) rpc.Session {
	return rpc.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    int64(s.ExpiresIn.Seconds()),
		ExpiresAt:    s.ExpiresAt.Unix(),
		User:         userToRPC(s.User),
	}
}

func profileToRPC(p models.Profile) rpc.Profile {
	return rpc.Profile{
		ID:              p.ID,
		Email:           p.Email,
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		UserType:        p.UserType,
		CreatedAt:       p.CreatedAt,
	}
}

func profileFromRPC(p rpc.Profile) models.Profile {
	return models.Profile{
		ID:              p.ID,
		Email:           p.Email,
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		UserType:        p.UserType,
		CreatedAt:       p.CreatedAt,
	}
}

func patchFromRPC(p rpc.ProfilePatch) models.ProfilePatch {
	return models.ProfilePatch{
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		UserType:        p.UserType,
	}
}
