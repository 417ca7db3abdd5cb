package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/client/services"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCheck(t *testing.T) {
	out := captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()

	stubInputs(t, "", "ann@example.com")
	fa.exists = true
	require.NoError(t, a.Check(context.Background()))
	require.Contains(t, *out, "This email is registered. Use 'signin' or 'magiclink'.")

	stubInputs(t, "", "not-an-email")
	require.ErrorIs(t, a.Check(context.Background()), errInvalidEmail)
}

func TestSignUp_CollectsDraftAndSendsCode(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()

	stubInputs(t, "passw0rd1",
		"ann@example.com", "Ann Lee", "1990-04-02", "07123 456 789", "1 High Street", "")

	require.NoError(t, a.SignUp(context.Background()))
	require.Equal(t, "ann@example.com", fa.signUpEmail)
	require.Equal(t, "passw0rd1", fa.signUpPass)

	require.NotNil(t, a.draft)
	require.Equal(t, "Ann Lee", a.draft.FullName)
	require.Nil(t, a.draft.Password)
	require.Equal(t, "ann@example.com", a.pendingEmail)
	require.Equal(t, testNow, a.codeSentAt)
}

func TestSignUp_EmailTaken(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()
	fa.exists = true

	stubInputs(t, "passw0rd1", "ann@example.com")
	err := a.SignUp(context.Background())
	require.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	require.Empty(t, fa.signUpEmail)
	require.Nil(t, a.draft)
}

func TestSignUp_RejectsInvalidSteps(t *testing.T) {
	tests := []struct {
		name     string
		password string
		answers  []string
		want     error
	}{
		{"email", "passw0rd1", []string{"ann@"}, errInvalidEmail},
		{"password", "short", []string{"ann@example.com"}, errWeakPassword},
		{"name", "passw0rd1", []string{"ann@example.com", "A"}, errInvalidName},
		{"date format", "passw0rd1", []string{"ann@example.com", "Ann", "02/04/1990"}, errInvalidBirth},
		{"under age", "passw0rd1", []string{"ann@example.com", "Ann", "2010-01-01"}, errInvalidBirth},
		{"phone", "passw0rd1", []string{"ann@example.com", "Ann", "1990-01-01", "0800 123"}, errInvalidPhone},
		{"address", "passw0rd1", []string{"ann@example.com", "Ann", "1990-01-01", "07123456789", "x"}, errInvalidAddress},
		{"photo missing", "passw0rd1", []string{"ann@example.com", "Ann", "1990-01-01", "07123456789", "1 High St", "/nonexistent/me.jpg"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureOutput(t)
			a, fa, _, _, _, _ := newTestApp()
			stubInputs(t, tt.password, tt.answers...)

			err := a.SignUp(context.Background())
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			require.Empty(t, fa.signUpEmail)
			require.Nil(t, a.draft)
		})
	}
}

func TestSignUp_ServiceErrorKeepsNoDraft(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()
	fa.signUpErr = services.ErrNetwork

	stubInputs(t, "passw0rd1", "ann@example.com", "Ann", "1990-01-01", "07123456789", "1 High St", "")
	require.ErrorIs(t, a.SignUp(context.Background()), services.ErrNetwork)
	require.Nil(t, a.draft)
	require.Empty(t, a.pendingEmail)
}

func TestVerify_CompletesSignup(t *testing.T) {
	out := captureOutput(t)
	a, fa, fs, _, _, fp := newTestApp()

	a.draft = &models.SignupDraft{
		Email:       "ann@example.com",
		FullName:    "Ann Lee",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "07123 456 789",
		Address:     "1 High Street",
		UserType:    models.UserTypeTenant,
	}
	a.pendingEmail = "ann@example.com"
	a.codeSentAt = testNow

	fa.verifyOut = &models.Profile{ID: "u1", Email: "ann@example.com", UserType: models.UserTypeTenant}
	fp.single = &models.Profile{ID: "u1", Email: "ann@example.com", FullName: strPtr("Ann Lee")}

	stubInputs(t, "", "123456")
	require.NoError(t, a.Verify(context.Background()))

	require.Equal(t, "ann@example.com", fa.verifyEmail)
	require.Equal(t, "123456", fa.verifyCode)
	require.Equal(t, "u1", fp.patchID)
	require.Equal(t, "Ann Lee", *fp.patch.FullName)
	require.Equal(t, "07123456789", *fp.patch.PhoneNumber)

	snap := fs.Snapshot()
	require.True(t, snap.IsAuthenticated)
	require.Equal(t, "Ann Lee", snap.CurrentUser.DisplayName())
	require.Nil(t, a.draft)
	require.Empty(t, a.pendingEmail)
	require.Contains(t, *out, "Welcome, Ann Lee")
}

func TestVerify_DetailsFailureStillSignsIn(t *testing.T) {
	captureOutput(t)
	a, fa, fs, _, _, fp := newTestApp()
	a.draft = &models.SignupDraft{Email: "ann@example.com", FullName: "Ann"}
	a.pendingEmail = "ann@example.com"

	fa.verifyOut = &models.Profile{ID: "u1", Email: "ann@example.com"}
	fp.updateErr = errors.New("permission denied")
	fp.singleErr = errors.New("network connection error")

	stubInputs(t, "", "123456")
	require.NoError(t, a.Verify(context.Background()))
	require.Equal(t, "u1", fs.Snapshot().CurrentUser.ID)
}

func TestVerify_PromptsForEmailWithoutSignup(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, fp := newTestApp()
	fa.verifyOut = &models.Profile{ID: "u1", Email: "ann@example.com"}

	stubInputs(t, "", "ann@example.com", "654321")
	require.NoError(t, a.Verify(context.Background()))
	require.Equal(t, "ann@example.com", fa.verifyEmail)
	require.Empty(t, fp.patchID)
}

func TestVerify_RejectsMalformedCode(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()
	a.pendingEmail = "ann@example.com"

	stubInputs(t, "", "12ab")
	require.ErrorIs(t, a.Verify(context.Background()), errInvalidCode)
	require.Empty(t, fa.verifyEmail)
}

func TestVerify_ServiceError(t *testing.T) {
	captureOutput(t)
	a, fa, fs, _, _, _ := newTestApp()
	a.pendingEmail = "ann@example.com"
	fa.verifyErr = services.ErrInvalidCredentials

	stubInputs(t, "", "123456")
	require.ErrorIs(t, a.Verify(context.Background()), services.ErrInvalidCredentials)
	require.False(t, fs.Snapshot().IsAuthenticated)
	require.Equal(t, "ann@example.com", a.pendingEmail)
}

func TestResend_Countdown(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()
	a.pendingEmail = "ann@example.com"
	a.codeSentAt = testNow.Add(-10 * time.Second)

	err := a.Resend(context.Background())
	require.EqualError(t, err, "please wait 50s before requesting a new code")
	require.Empty(t, fa.resendEmail)

	a.codeSentAt = testNow.Add(-61 * time.Second)
	require.NoError(t, a.Resend(context.Background()))
	require.Equal(t, "ann@example.com", fa.resendEmail)
	require.Equal(t, testNow, a.codeSentAt)
}

func TestSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := captureOutput(t)
		a, fa, fs, _, _, _ := newTestApp()
		fa.signInProfile = &models.Profile{ID: "u1", Email: "ann@example.com"}

		stubInputs(t, "passw0rd1", "ann@example.com")
		require.NoError(t, a.SignIn(context.Background()))
		require.Equal(t, "u1", fs.Snapshot().CurrentUser.ID)
		require.Contains(t, *out, "Welcome back, ann@example.com")
	})

	t.Run("unverified email is remembered", func(t *testing.T) {
		captureOutput(t)
		a, fa, fs, _, _, _ := newTestApp()
		fa.signInErr = services.ErrEmailNotVerified

		stubInputs(t, "passw0rd1", "ann@example.com")
		require.ErrorIs(t, a.SignIn(context.Background()), services.ErrEmailNotVerified)
		require.Equal(t, "ann@example.com", a.pendingEmail)
		require.False(t, fs.Snapshot().IsAuthenticated)
	})
}

func TestMagicLink(t *testing.T) {
	captureOutput(t)
	a, fa, _, _, _, _ := newTestApp()

	stubInputs(t, "", "ann@example.com")
	require.NoError(t, a.MagicLink(context.Background()))
	require.Equal(t, "ann@example.com", fa.magicEmail)
}

func TestLogout(t *testing.T) {
	captureOutput(t)
	a, _, _, fc, _, _ := newTestApp()
	a.draft = &models.SignupDraft{Email: "ann@example.com", Password: []byte("x")}
	a.pendingEmail = "ann@example.com"

	require.NoError(t, a.Logout(context.Background()))
	require.Equal(t, 1, fc.logouts)
	require.Nil(t, a.draft)
	require.Empty(t, a.pendingEmail)
}
