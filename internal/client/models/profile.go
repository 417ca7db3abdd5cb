// Package models defines the client-side domain types: profiles, sessions,
// backend auth events and the in-memory signup draft.
package models

import "time"

type UserType string

const (
	UserTypeTenant   UserType = "tenant"
	UserTypeLandlord UserType = "landlord"
)

// Profile is the durable per-user record kept in the profile store.
// Optional columns are pointers; nil means the column is NULL.
type Profile struct {
	ID              string
	Email           string
	FullName        *string
	DateOfBirth     *time.Time
	PhoneNumber     *string
	Address         *string
	ProfileImageURL *string
	UserType        UserType
	CreatedAt       time.Time
}

// DisplayName falls back to the email when no name is set.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// ProfilePatch lists the columns an update should change.
type ProfilePatch struct {
	FullName        *string
	DateOfBirth     *time.Time
	PhoneNumber     *string
	Address         *string
	ProfileImageURL *string
	UserType        *UserType
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.DateOfBirth == nil && p.PhoneNumber == nil &&
		p.Address == nil && p.ProfileImageURL == nil && p.UserType == nil
}
