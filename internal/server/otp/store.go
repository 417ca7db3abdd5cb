// Package otp keeps one-time codes issued for signup confirmation and
// magic-link sign-in. Codes live in a TTL cache: in process memory for a
// single node, or in redis when several nodes share the load.
package otp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/dmitrijs2005/rentable/internal/common"
)

// Purpose separates codes issued for different flows to the same address.
type Purpose string

const (
	PurposeSignup    Purpose = "signup"
	PurposeMagicLink Purpose = "magiclink"
)

// Store holds at most one live code per (purpose, email). Issuing a new code
// replaces the previous one.
type Store interface {
	Put(ctx context.Context, purpose Purpose, email, code string, ttl time.Duration) error
	// Take consumes the code if it matches. A mismatch leaves the stored code
	// in place and reports false.
	Take(ctx context.Context, purpose Purpose, email, code string) (bool, error)
	Close() error
}

func key(purpose Purpose, email string) string {
	return "otp:" + string(purpose) + ":" + common.NormalizeEmail(email)
}

// digest is what gets stored, so a cache dump does not reveal live codes.
func digest(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

func matches(stored []byte, code string) bool {
	return subtle.ConstantTimeCompare(stored, digest(code)) == 1
}

// Generate returns a fresh numeric code of n digits.
func Generate(n int) (string, error) {
	if n <= 0 {
		n = common.OTPLength
	}
	return common.GenerateNumericCode(n)
}
