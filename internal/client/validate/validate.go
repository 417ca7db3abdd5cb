// Package validate holds the input rules of the signup flow. Predicates
// return bool; they never normalise their input beyond what the rule
// itself requires.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 50
	MinAge            = 18
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MinAddressLength  = 5
	UKPhoneLength     = 11
	OTPLength         = 6
)

var (
	emailRe    = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)
	ukPhoneRe  = regexp.MustCompile(`^07\d{9}$`)
	postcodeRe = regexp.MustCompile(`^[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}$`)
	otpRe      = regexp.MustCompile(`^\d{6}$`)
)

const passwordSpecials = "@$!%*#?&"

func Email(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// UKPhone accepts 07XXXXXXXXX with any spaces in between.
func UKPhone(s string) bool {
	return ukPhoneRe.MatchString(strings.ReplaceAll(s, " ", ""))
}

// FormatUKPhone renders an 11 digit number as "07XXX XXX XXX"; other
// inputs come back with spaces removed.
func FormatUKPhone(s string) string {
	cleaned := strings.ReplaceAll(s, " ", "")
	if len(cleaned) != UKPhoneLength {
		return cleaned
	}
	return cleaned[:5] + " " + cleaned[5:8] + " " + cleaned[8:]
}

func UKPostcode(s string) bool {
	return postcodeRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// Name requires 2..50 characters after trimming.
func Name(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= MinNameLength && n <= MaxNameLength
}

func Address(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinAddressLength
}

func OTP(s string) bool {
	return otpRe.MatchString(s)
}

// Age returns the number of whole years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func Adult(dob, now time.Time) bool {
	return Age(dob, now) >= MinAge
}

// StrongPassword: 8..128 characters from letters, digits and @$!%*#?&,
// with at least one letter and one digit.
func StrongPassword(s string) bool {
	if len(s) < MinPasswordLength || len(s) > MaxPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
		default:
			return false
		}
	}
	return letter && digit
}

type PasswordStrength int

const (
	Weak PasswordStrength = iota
	Fair
	Strong
	VeryStrong
)

func (p PasswordStrength) String() string {
	switch p {
	case Fair:
		return "Fair"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "Weak"
	}
}

func Strength(s string) PasswordStrength {
	n := utf8.RuneCountInString(s)
	switch {
	case n < 6:
		return Weak
	case n < MinPasswordLength:
		return Fair
	case !StrongPassword(s):
		return Fair
	case n >= 12 && strings.ContainsAny(s, passwordSpecials) && hasUpper(s) && hasLower(s):
		return VeryStrong
	default:
		return Strong
	}
}

// DigitsOnly drops every non-digit rune.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func hasUpper(s string) bool { return strings.IndexFunc(s, unicode.IsUpper) >= 0 }

func hasLower(s string) bool { return strings.IndexFunc(s, unicode.IsLower) >= 0 }
