package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"net/http"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/filex"
)

// maxPhotoFileBytes bounds what is read from disk before re-encoding; the
// upload itself is held to common.MaxProfileImageBytes.
const maxPhotoFileBytes = 16 << 20

var errNotSignedIn = errors.New("not signed in")

// Avatar uploads a JPEG or PNG file as the signed-in user's photo.
func (a *App) Avatar(ctx context.Context, path string) error {
	snap := a.state.Snapshot()
	if snap.CurrentUser == nil {
		return errNotSignedIn
	}

	data, err := filex.ReadFileLimited(path, maxPhotoFileBytes)
	if err != nil {
		return err
	}
	if len(data) > maxPhotoFileBytes {
		return errPhotoTooLarge
	}

	publicURL, err := a.uploadPhoto(ctx, snap.CurrentUser.ID, data)
	if err != nil {
		return err
	}

	p := *snap.CurrentUser
	p.ProfileImageURL = &publicURL
	a.state.UpdateUser(p)
	printlnFn("Photo uploaded:", publicURL)
	return nil
}

// uploadPhoto sends JPEG bytes as they are and re-encodes anything else.
func (a *App) uploadPhoto(ctx context.Context, userID string, data []byte) (string, error) {
	if http.DetectContentType(data) == common.ProfileImageContentType {
		return a.authService.UploadProfileImage(ctx, userID, data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported image: %w", err)
	}
	return a.authService.UploadProfilePhoto(ctx, userID, img)
}

// WhoAmI prints the signed-in profile.
func (a *App) WhoAmI(_ context.Context) error {
	u := a.state.Snapshot().CurrentUser
	if u == nil {
		return errNotSignedIn
	}

	printlnFn("Name:   ", u.DisplayName())
	printlnFn("Email:  ", u.Email)
	printlnFn("Type:   ", string(u.UserType))
	if u.PhoneNumber != nil {
		printlnFn("Phone:  ", *u.PhoneNumber)
	}
	if u.Address != nil {
		printlnFn("Address:", *u.Address)
	}
	if u.DateOfBirth != nil {
		printlnFn("Born:   ", u.DateOfBirth.Format(dateLayout))
	}
	if u.ProfileImageURL != nil {
		printlnFn("Photo:  ", *u.ProfileImageURL)
	}
	return nil
}
