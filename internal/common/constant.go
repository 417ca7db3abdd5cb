// Package common contains constants, sentinel errors and small helpers
// shared by the rentable client and server.
package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

const (
	// OTPLength is the number of digits in a one-time code.
	OTPLength = 6
	// OTPResendCountdown is how long a client waits before offering a resend.
	OTPResendCountdown = 60 * time.Second

	// MaxProfileImageBytes is the hard ceiling for an avatar payload.
	MaxProfileImageBytes = 1_048_576
	// AvatarsBucket is the object store bucket holding profile images.
	AvatarsBucket = "avatars"
	// ProfileImageContentType is the content type used for avatars.
	ProfileImageContentType = "image/jpeg"

	// DeepLinkScheme is the URL scheme registered by the app.
	DeepLinkScheme = "rentable"
	// AuthCallbackHost is the host used by email confirmation links.
	AuthCallbackHost = "auth-callback"
	// DefaultRedirectURL is where verified email links send the user.
	DefaultRedirectURL = DeepLinkScheme + "://" + AuthCallbackHost
)

// ProfileImagePath returns the deterministic object path of a user's avatar.
func ProfileImagePath(userID string) string {
	return userID + "/profile.jpg"
}
