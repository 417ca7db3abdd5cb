// Package cryptox wraps the password hashing and token digests used by the
// identity service.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
var PasswordCost = bcrypt.DefaultCost

// dummyHash is compared against when the account does not exist, so a
// failed lookup costs as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rentable-dummy-password"), bcrypt.MinCost)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, PasswordCost)
}

// CheckPassword reports whether password matches hash. A nil hash is
// checked against a throwaway hash and always fails.
func CheckPassword(hash, password []byte) bool {
	if len(hash) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, password)
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

// TokenDigest returns the hex SHA-256 of an opaque token. Refresh tokens are
// stored only in this form.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
