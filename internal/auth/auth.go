// Package auth hashes and checks user passwords.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// IsHash reports whether stored looks like a bcrypt hash.
func IsHash(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}

// CheckPassword compares plain against the stored password. Stored values
// that are not bcrypt hashes are plaintext records from before hashing; they
// still verify, and needsRehash tells the caller to replace them.
func CheckPassword(stored, plain string) (needsRehash bool, err error) {
	if stored == "" {
		return false, ErrInvalidCredentials
	}
	if !IsHash(stored) {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) != 1 {
			return false, ErrInvalidCredentials
		}
		return true, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, ErrInvalidCredentials
	}
	if err != nil {
		return false, fmt.Errorf("checking password: %w", err)
	}
	return false, nil
}
