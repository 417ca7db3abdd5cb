// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity row. EmailConfirmedAt stays nil until a signup code
// is verified.
type User struct {
	ID               string
	Email            string
	PasswordHash     []byte
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// Confirmed reports whether the user's email has been verified.
func (u *User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
