// Package services contains application services for the rentable client.
// This file defines the authentication service: sign-up with email OTP
// verification, sign-in, profile provisioning and profile image upload.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/identity"
	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/client/profiles"
	"github.com/dmitrijs2005/rentable/internal/client/storage"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/rpc"
)

// PhotoQuality is the JPEG quality used by UploadProfilePhoto.
const PhotoQuality = 70

// AuthService mediates between the app and the credential backend, the
// profile store and the object store.
//
// Contract:
//   - every returned error is an *AuthError;
//   - CurrentSession and CurrentUserID never touch the network;
//   - the service keeps no mutable state of its own, so methods may run
//     concurrently.
type AuthService interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	SignIn(ctx context.Context, email string, password []byte) (*models.Profile, error)
	SignUp(ctx context.Context, email string, password []byte) error
	VerifyOTP(ctx context.Context, email, code string) (*models.Profile, error)
	EnsureProfile(ctx context.Context) (*models.Profile, error)
	Resend(ctx context.Context, email string) error
	SendMagicLink(ctx context.Context, email string) error
	UploadProfileImage(ctx context.Context, userID string, data []byte) (string, error)
	UploadProfilePhoto(ctx context.Context, userID string, img image.Image) (string, error)
	SignOut(ctx context.Context) error
	CurrentSession() *models.Session
	CurrentUserID() (string, bool)
}

type authService struct {
	backend  identity.Backend
	profiles profiles.Store
	objects  storage.Store
	logger   logging.Logger
	now      func() time.Time
}

// NewAuthService wires the three backends. objects must be bound to the
// avatars bucket.
func NewAuthService(backend identity.Backend, profileStore profiles.Store, objects storage.Store, logger logging.Logger) AuthService {
	return &authService{
		backend:  backend,
		profiles: profileStore,
		objects:  objects,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckEmailExists reports whether a profile row uses email. Any failure is
// a network error.
func (a *authService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	rows, err := a.profiles.Select(ctx, rpc.ColumnEmail, common.NormalizeEmail(email))
	if err != nil {
		return false, a.failed(ctx, "check email", newAuthError(KindNetwork, err))
	}
	return len(rows) > 0, nil
}

// SignIn authenticates and returns the caller's profile. An unconfirmed
// email fails before the profile is read.
func (a *authService) SignIn(ctx context.Context, email string, password []byte) (*models.Profile, error) {
	session, err := a.backend.SignIn(ctx, email, string(password))
	if err != nil {
		return nil, a.failed(ctx, "sign in", classifySignIn(err))
	}
	if session == nil || session.User.ID == "" {
		return nil, a.failed(ctx, "sign in", ErrInvalidData)
	}
	if !session.EmailConfirmed() {
		// the backend already holds the session; drop it so no restore
		// picks it up
		if err := a.backend.SignOut(ctx); err != nil {
			a.logger.Warn(ctx, "could not drop unconfirmed session", "user_id", session.User.ID, "error", err)
		}
		return nil, a.failed(ctx, "sign in", ErrEmailNotVerified)
	}

	p, err := a.profiles.Single(ctx, rpc.ColumnID, session.User.ID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return nil, a.failed(ctx, "sign in", newAuthError(KindUserNotFound, err))
		}
		return nil, a.failed(ctx, "sign in", classifySignIn(err))
	}
	return p, nil
}

// SignUp only creates the identity. The profile row is provisioned by
// VerifyOTP, once a session exists to satisfy row-level write checks.
func (a *authService) SignUp(ctx context.Context, email string, password []byte) error {
	if _, err := a.backend.SignUp(ctx, email, string(password)); err != nil {
		return a.failed(ctx, "sign up", classifySignUp(err))
	}
	return nil
}

// VerifyOTP confirms a signup code, makes sure a profile row exists and
// returns it. Safe to repeat: a duplicate insert is ignored.
func (a *authService) VerifyOTP(ctx context.Context, email, code string) (*models.Profile, error) {
	session, err := a.backend.VerifyOTP(ctx, email, code, rpc.OTPTypeSignup)
	if err != nil {
		return nil, a.failed(ctx, "verify otp", classifyVerify(err))
	}
	if session == nil || session.User.ID == "" {
		return nil, a.failed(ctx, "verify otp", ErrInvalidData)
	}

	p, err := a.provision(ctx, session.User.ID, email)
	if err != nil {
		return nil, a.failed(ctx, "verify otp", classifyVerify(err))
	}
	return p, nil
}

// EnsureProfile provisions the profile row of the current session's user,
// for sessions confirmed outside VerifyOTP (an emailed signup link).
// Safe to repeat.
func (a *authService) EnsureProfile(ctx context.Context) (*models.Profile, error) {
	session := a.backend.CurrentSession()
	if session == nil || session.User.ID == "" {
		return nil, a.failed(ctx, "ensure profile", ErrInvalidData)
	}
	if !session.EmailConfirmed() {
		return nil, a.failed(ctx, "ensure profile", ErrEmailNotVerified)
	}

	p, err := a.provision(ctx, session.User.ID, session.User.Email)
	if err != nil {
		return nil, a.failed(ctx, "ensure profile", classifyVerify(err))
	}
	return p, nil
}

// provision inserts the minimal tenant row, ignoring a duplicate, and
// returns the stored row.
func (a *authService) provision(ctx context.Context, userID, email string) (*models.Profile, error) {
	minimal := models.Profile{
		ID:        userID,
		Email:     common.NormalizeEmail(email),
		UserType:  models.UserTypeTenant,
		CreatedAt: a.now().UTC(),
	}
	if err := a.profiles.Insert(ctx, minimal); err != nil {
		if !errors.Is(err, profiles.ErrConflict) {
			return nil, err
		}
		a.logger.Debug(ctx, "profile already provisioned", "user_id", userID)
	}
	return a.profiles.Single(ctx, rpc.ColumnID, userID)
}

// Resend asks for a fresh signup code.
func (a *authService) Resend(ctx context.Context, email string) error {
	if err := a.backend.Resend(ctx, email); err != nil {
		return a.failed(ctx, "resend", classifySignUp(err))
	}
	return nil
}

// SendMagicLink mails a one-click sign-in link.
func (a *authService) SendMagicLink(ctx context.Context, email string) error {
	if err := a.backend.SignInWithOTP(ctx, email); err != nil {
		return a.failed(ctx, "magic link", classifySignUp(err))
	}
	return nil
}

// UploadProfileImage stores data as the user's avatar and records its
// public URL on the profile. Oversized payloads fail before any network
// call. If the profile update fails the uploaded object is left in place.
func (a *authService) UploadProfileImage(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) > common.MaxProfileImageBytes {
		return "", a.failed(ctx, "upload image", newAuthError(KindUploadFailed,
			fmt.Errorf("image is %d bytes, limit %d", len(data), common.MaxProfileImageBytes)))
	}

	path := common.ProfileImagePath(userID)
	if err := a.objects.Upload(ctx, path, data, common.ProfileImageContentType, true); err != nil {
		return "", a.failed(ctx, "upload image", classifyUpload(err))
	}

	publicURL, err := a.objects.PublicURL(path)
	if err != nil {
		return "", a.failed(ctx, "upload image", classifyUpload(err))
	}

	if err := a.profiles.Update(ctx, userID, models.ProfilePatch{ProfileImageURL: &publicURL}); err != nil {
		a.logger.Warn(ctx, "avatar stored but profile not updated", "user_id", userID, "error", err)
		return "", a.failed(ctx, "upload image", classifyUpload(err))
	}
	return publicURL, nil
}

// UploadProfilePhoto JPEG-encodes img at PhotoQuality and uploads it.
func (a *authService) UploadProfilePhoto(ctx context.Context, userID string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: PhotoQuality}); err != nil {
		return "", a.failed(ctx, "upload photo", newAuthError(KindUploadFailed, err))
	}
	return a.UploadProfileImage(ctx, userID, buf.Bytes())
}

// SignOut revokes the session remotely. Failures are unknown errors; the
// backend clears its local session either way.
func (a *authService) SignOut(ctx context.Context) error {
	if err := a.backend.SignOut(ctx); err != nil {
		return a.failed(ctx, "sign out", Unknown(err))
	}
	return nil
}

// failed logs a classified error at Debug and returns it.
func (a *authService) failed(ctx context.Context, op string, err *AuthError) *AuthError {
	a.logger.Debug(ctx, "auth operation failed", "op", op, "kind", err.Kind, "error", err)
	return err
}

func (a *authService) CurrentSession() *models.Session {
	return a.backend.CurrentSession()
}

func (a *authService) CurrentUserID() (string, bool) {
	s := a.backend.CurrentSession()
	if s == nil {
		return "", false
	}
	return s.User.ID, true
}
