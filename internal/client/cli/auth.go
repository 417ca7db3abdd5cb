package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/client/services"
	"github.com/dmitrijs2005/rentable/internal/client/validate"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/filex"
	"github.com/dmitrijs2005/rentable/internal/rpc"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

const dateLayout = "2006-01-02"

var (
	errInvalidEmail    = errors.New("please enter a valid email address")
	errWeakPassword    = fmt.Errorf("password must be at least %d characters with a letter and a digit", validate.MinPasswordLength)
	errInvalidName     = fmt.Errorf("name must be %d to %d characters", validate.MinNameLength, validate.MaxNameLength)
	errInvalidBirth    = fmt.Errorf("you must be at least %d years old", validate.MinAge)
	errInvalidPhone    = errors.New("please enter a UK mobile number starting with 07")
	errInvalidAddress  = fmt.Errorf("address must be at least %d characters", validate.MinAddressLength)
	errInvalidCode     = fmt.Errorf("the code must be exactly %d digits", common.OTPLength)
	errPhotoTooLarge   = fmt.Errorf("photo must be at most %d bytes", common.MaxProfileImageBytes)
	errNoPendingSignup = errors.New("no signup in progress, enter your email")
)

func (a *App) promptEmail() (string, error) {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return "", errInvalidEmail
	}
	return email, nil
}

// Check reports whether an email already has a profile.
func (a *App) Check(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	exists, err := a.authService.CheckEmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		printlnFn("This email is registered. Use 'signin' or 'magiclink'.")
	} else {
		printlnFn("This email is free. Use 'signup' to create an account.")
	}
	return nil
}

// SignUp walks the signup form one step at a time, validating each answer,
// then creates the identity and waits for the emailed code. The form is
// kept in memory until Verify provisions the profile.
func (a *App) SignUp(ctx context.Context) error {
	draft := models.NewSignupDraft(a.now())
	ok := false
	defer func() {
		if !ok {
			draft.Wipe()
		}
	}()

	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	draft.Email = email

	exists, err := a.authService.CheckEmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return services.ErrEmailAlreadyExists
	}

	if draft.Password, err = getPassword(os.Stdout); err != nil {
		return err
	}
	if !draft.IsPasswordValid() {
		return errWeakPassword
	}
	printlnFn("Password strength:", validate.Strength(string(draft.Password)).String())

	if err := a.fillDraft(draft); err != nil {
		return err
	}

	if err := a.authService.SignUp(ctx, draft.Email, draft.Password); err != nil {
		return err
	}
	common.WipeByteArray(draft.Password)
	draft.Password = nil

	a.finishSignup()
	a.draft = draft
	a.pendingEmail = draft.Email
	a.codeSentAt = a.now()
	ok = true

	printlnFn(fmt.Sprintf("We sent a %d-digit code to %s. Type 'verify' to enter it.", common.OTPLength, draft.Email))
	return nil
}

func (a *App) fillDraft(draft *models.SignupDraft) error {
	var err error

	if draft.FullName, err = getSimpleText(a.reader, "Enter full name", os.Stdout); err != nil {
		return err
	}
	if !draft.IsNameValid() {
		return errInvalidName
	}

	dob, err := getSimpleText(a.reader, "Enter date of birth (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	if draft.DateOfBirth, err = time.Parse(dateLayout, dob); err != nil || !draft.IsDateOfBirthValid(a.now()) {
		return errInvalidBirth
	}

	if draft.PhoneNumber, err = getSimpleText(a.reader, "Enter mobile number", os.Stdout); err != nil {
		return err
	}
	if !draft.IsPhoneValid() {
		return errInvalidPhone
	}
	printlnFn("Phone:", draft.FormattedPhoneNumber())

	if draft.Address, err = getSimpleText(a.reader, "Enter address", os.Stdout); err != nil {
		return err
	}
	if !draft.IsAddressValid() {
		return errInvalidAddress
	}

	photo, err := getSimpleText(a.reader, "Profile photo file (optional, Enter to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if photo != "" {
		if draft.ProfileImage, err = filex.ReadFileLimited(photo, common.MaxProfileImageBytes); err != nil {
			return err
		}
		if !draft.IsPhotoValid() {
			return errPhotoTooLarge
		}
	}
	return nil
}

// Verify confirms the signup code. When it completes a signup started in
// this session, the rest of the form and the photo are saved as well.
func (a *App) Verify(ctx context.Context) error {
	email := a.pendingEmail
	if email == "" {
		printlnFn(errNoPendingSignup.Error())
		var err error
		if email, err = a.promptEmail(); err != nil {
			return err
		}
	}

	code, err := getSimpleText(a.reader, fmt.Sprintf("Enter the %d-digit code", common.OTPLength), os.Stdout)
	if err != nil {
		return err
	}
	if !validate.OTP(code) {
		return errInvalidCode
	}

	p, err := a.authService.VerifyOTP(ctx, email, code)
	if err != nil {
		return err
	}

	if a.draft != nil && strings.EqualFold(a.draft.Email, email) {
		p = a.completeProfile(ctx, p)
	}
	a.finishSignup()

	a.state.UpdateUser(*p)
	printlnFn("Welcome,", p.DisplayName())
	return nil
}

// completeProfile applies the draft to the freshly provisioned row. Failures
// are reported but do not undo the verification.
func (a *App) completeProfile(ctx context.Context, p *models.Profile) *models.Profile {
	if err := a.profiles.Update(ctx, p.ID, a.draft.Patch()); err != nil {
		a.logger.Warn(ctx, "could not save signup details", "user_id", p.ID, "error", err)
		printlnFn("Your details could not be saved; you can update them later.")
	}

	if len(a.draft.ProfileImage) > 0 {
		if _, err := a.uploadPhoto(ctx, p.ID, a.draft.ProfileImage); err != nil {
			printlnFn("Error:", err.Error())
		}
	}

	fresh, err := a.profiles.Single(ctx, rpc.ColumnID, p.ID)
	if err != nil {
		a.logger.Warn(ctx, "could not reload profile", "user_id", p.ID, "error", err)
		return p
	}
	return fresh
}

func (a *App) finishSignup() {
	if a.draft != nil {
		a.draft.Wipe()
		a.draft = nil
	}
	a.pendingEmail = ""
	a.codeSentAt = time.Time{}
}

// Resend asks for a new signup code, at most once per countdown.
func (a *App) Resend(ctx context.Context) error {
	if !a.codeSentAt.IsZero() {
		if wait := common.OTPResendCountdown - a.now().Sub(a.codeSentAt); wait > 0 {
			return fmt.Errorf("please wait %ds before requesting a new code", int(wait.Seconds()+0.5))
		}
	}

	email := a.pendingEmail
	if email == "" {
		var err error
		if email, err = a.promptEmail(); err != nil {
			return err
		}
	}

	if err := a.authService.Resend(ctx, email); err != nil {
		return err
	}
	a.pendingEmail = email
	a.codeSentAt = a.now()
	printlnFn("A new code is on its way to", email)
	return nil
}

// SignIn authenticates with email and password. An unverified account is
// remembered so 'resend' and 'verify' can pick it up.
func (a *App) SignIn(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.authService.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			a.pendingEmail = email
			printlnFn("Type 'resend' to get a new code, then 'verify'.")
		}
		return err
	}

	a.state.UpdateUser(*p)
	printlnFn("Welcome back,", p.DisplayName())
	return nil
}

// MagicLink emails a sign-in link; the user pastes it back with 'open'.
func (a *App) MagicLink(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	if err := a.authService.SendMagicLink(ctx, email); err != nil {
		return err
	}
	printlnFn("Check your inbox, then paste the link here with 'open <url>'.")
	return nil
}

// Logout signs out remotely when possible and always locally.
func (a *App) Logout(ctx context.Context) error {
	a.coordinator.Logout(ctx)
	a.finishSignup()
	printlnFn("Signed out")
	return nil
}
