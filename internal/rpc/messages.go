package rpc

import "time"

// OTP verification purposes accepted by Identity/VerifyOTP.
const (
	OTPTypeSignup    = "signup"
	OTPTypeMagicLink = "magiclink"
	OTPTypeEmail     = "email"
)

type Empty struct{}

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	User User `json:"user"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type UserResponse struct {
	User User `json:"user"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// Profile is the wire form of a row in the profiles table.
type Profile struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        *string    `json:"full_name,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	Address         *string    `json:"address,omitempty"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	UserType        string     `json:"user_type"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ProfilePatch carries the columns to change; nil fields are left as is.
type ProfilePatch struct {
	FullName        *string    `json:"full_name,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	Address         *string    `json:"address,omitempty"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	UserType        *string    `json:"user_type,omitempty"`
}

// Profile columns usable in SelectProfilesRequest.
const (
	ColumnID    = "id"
	ColumnEmail = "email"
)

type SelectProfilesRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

type SelectProfilesResponse struct {
	Rows []Profile `json:"rows"`
}

type InsertProfileRequest struct {
	Profile Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	ID    string       `json:"id"`
	Patch ProfilePatch `json:"patch"`
}

type UpdateProfileResponse struct {
	Rows int64 `json:"rows"`
}

type CreateUploadURLRequest struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Upsert      bool   `json:"upsert"`
}

type CreateUploadURLResponse struct {
	URL string `json:"url"`
}
