package models

import "time"

// Profile is a row of the profiles table, keyed by the owning user's id.
type Profile struct {
	ID              string
	Email           string
	FullName        *string
	DateOfBirth     *time.Time
	PhoneNumber     *string
	Address         *string
	ProfileImageURL *string
	UserType        string
	CreatedAt       time.Time
}

// ProfilePatch lists the columns to change; nil fields are left untouched.
type ProfilePatch struct {
	FullName        *string
	DateOfBirth     *time.Time
	PhoneNumber     *string
	Address         *string
	ProfileImageURL *string
	UserType        *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.DateOfBirth == nil && p.PhoneNumber == nil &&
		p.Address == nil && p.ProfileImageURL == nil && p.UserType == nil
}

// Profile user types.
const (
	UserTypeTenant   = "tenant"
	UserTypeLandlord = "landlord"
)
