package mailer

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
)

// Mailer composes the auth emails and hands them to a Sender.
type Mailer struct {
	sender      Sender
	publicURL   string
	redirectURL string
	ttl         time.Duration
}

// New returns a Mailer. publicURL is the externally reachable base of the
// HTTP surface serving /auth/v1/verify; redirectURL is where that endpoint
// sends the user afterwards.
func New(sender Sender, publicURL, redirectURL string, ttl time.Duration) *Mailer {
	return &Mailer{
		sender:      sender,
		publicURL:   strings.TrimRight(publicURL, "/"),
		redirectURL: redirectURL,
		ttl:         ttl,
	}
}

// VerifyLink returns the one-click link for code.
func (m *Mailer) VerifyLink(email, code, otpType string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", code)
	q.Set("type", otpType)
	if m.redirectURL != "" {
		q.Set("redirect_to", m.redirectURL)
	}
	return m.publicURL + "/auth/v1/verify?" + q.Encode()
}

// SendSignupCode mails the confirmation code for a new account.
func (m *Mailer) SendSignupCode(ctx context.Context, email, code string) error {
	link := m.VerifyLink(email, code, "signup")
	text := fmt.Sprintf("Your Rentable confirmation code is %s.\n\nOr confirm your email by opening:\n%s\n\nThe code expires in %s.\n",
		code, link, m.ttl)
	body := fmt.Sprintf(`<p>Your Rentable confirmation code is <b>%s</b>.</p><p><a href="%s">Confirm your email</a></p><p>The code expires in %s.</p>`,
		html.EscapeString(code), html.EscapeString(link), m.ttl)
	return m.sender.Send(ctx, email, "Confirm your Rentable account", text, body)
}

// SendMagicLink mails a sign-in link together with its code.
func (m *Mailer) SendMagicLink(ctx context.Context, email, code string) error {
	link := m.VerifyLink(email, code, "magiclink")
	text := fmt.Sprintf("Sign in to Rentable by opening:\n%s\n\nOr enter the code %s.\n\nThe link expires in %s.\n",
		link, code, m.ttl)
	body := fmt.Sprintf(`<p><a href="%s">Sign in to Rentable</a></p><p>Or enter the code <b>%s</b>.</p><p>The link expires in %s.</p>`,
		html.EscapeString(link), html.EscapeString(code), m.ttl)
	return m.sender.Send(ctx, email, "Your Rentable sign-in link", text, body)
}
