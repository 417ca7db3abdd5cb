package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/validate"
	"github.com/dmitrijs2005/rentable/internal/common"
)

// SignupDraft accumulates the signup form across onboarding steps. It is
// never persisted; call Wipe when the flow ends either way.
type SignupDraft struct {
	Email        string
	Password     []byte
	FullName     string
	DateOfBirth  time.Time
	PhoneNumber  string
	Address      string
	ProfileImage []byte
	UserType     UserType
}

// NewSignupDraft starts a tenant draft with a date of birth exactly
// MinAge years before now.
func NewSignupDraft(now time.Time) *SignupDraft {
	return &SignupDraft{
		DateOfBirth: now.AddDate(-validate.MinAge, 0, 0),
		UserType:    UserTypeTenant,
	}
}

func (d *SignupDraft) IsEmailValid() bool { return validate.Email(d.Email) }

func (d *SignupDraft) IsPasswordValid() bool { return validate.StrongPassword(string(d.Password)) }

func (d *SignupDraft) IsNameValid() bool { return validate.Name(d.FullName) }

func (d *SignupDraft) IsDateOfBirthValid(now time.Time) bool {
	return validate.Adult(d.DateOfBirth, now)
}

func (d *SignupDraft) IsPhoneValid() bool { return validate.UKPhone(d.PhoneNumber) }

func (d *SignupDraft) IsAddressValid() bool { return validate.Address(d.Address) }

// IsPhotoValid: the photo is optional; when present it must fit the
// avatar ceiling.
func (d *SignupDraft) IsPhotoValid() bool {
	return len(d.ProfileImage) <= common.MaxProfileImageBytes
}

// FormattedPhoneNumber renders the phone as 07XXX XXX XXX.
func (d *SignupDraft) FormattedPhoneNumber() string {
	return validate.FormatUKPhone(d.PhoneNumber)
}

// ToProfile converts the draft into a profile row. The image URL is left
// empty; it is set once the photo has been uploaded.
func (d *SignupDraft) ToProfile(id string, createdAt time.Time) Profile {
	p := Profile{
		ID:        id,
		Email:     strings.TrimSpace(d.Email),
		UserType:  d.UserType,
		CreatedAt: createdAt,
	}
	if p.UserType == "" {
		p.UserType = UserTypeTenant
	}
	if name := strings.TrimSpace(d.FullName); name != "" {
		p.FullName = &name
	}
	if !d.DateOfBirth.IsZero() {
		dob := d.DateOfBirth
		p.DateOfBirth = &dob
	}
	if phone := strings.ReplaceAll(d.PhoneNumber, " ", ""); phone != "" {
		p.PhoneNumber = &phone
	}
	if addr := strings.TrimSpace(d.Address); addr != "" {
		p.Address = &addr
	}
	return p
}

// Patch returns the profile columns the draft fills in, for applying to a
// row that was provisioned with the minimal column set.
func (d *SignupDraft) Patch() ProfilePatch {
	p := d.ToProfile("", time.Time{})
	ut := p.UserType
	return ProfilePatch{
		FullName:    p.FullName,
		DateOfBirth: p.DateOfBirth,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		UserType:    &ut,
	}
}

// Wipe clears the password and photo bytes and resets every field.
func (d *SignupDraft) Wipe() {
	common.WipeByteArray(d.Password)
	common.WipeByteArray(d.ProfileImage)
	*d = SignupDraft{}
}
