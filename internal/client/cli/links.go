package cli

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/rentable/internal/rpc"
)

var errUnsupportedLink = errors.New("this link cannot be opened here")

// Open follows an auth callback link: the tokens it carries are exchanged
// for a session first, then the coordinator restores the app state. A
// signup link confirms the email outside VerifyOTP, so the profile row is
// provisioned here before the restore reads it.
func (a *App) Open(ctx context.Context, rawURL string) error {
	if !a.coordinator.CanHandleURL(rawURL) {
		return errUnsupportedLink
	}

	if _, err := a.backend.SessionFromURL(ctx, rawURL); err != nil {
		return err
	}

	if linkType(rawURL) == rpc.OTPTypeSignup {
		p, err := a.authService.EnsureProfile(ctx)
		if err != nil {
			return err
		}
		if a.draft != nil && strings.EqualFold(a.draft.Email, p.Email) {
			a.completeProfile(ctx, p)
		}
	}

	if !a.coordinator.HandleDeepLink(ctx, rawURL) {
		printlnFn("Link accepted, nothing to restore")
		return nil
	}
	a.finishSignup()

	// HandleDeepLink restores synchronously; the flow itself follows later
	snap := a.state.Snapshot()
	if !snap.IsAuthenticated || snap.CurrentUser == nil {
		printlnFn("Link accepted, but the session could not be restored")
		return nil
	}
	printlnFn("Welcome,", snap.CurrentUser.DisplayName())
	return nil
}

func linkType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("type")
}
