package auth

import (
	"errors"

	"github.com/evently/backend/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultHashCost is the bcrypt work factor used for stored passwords.
	DefaultHashCost = 10
	// MaxPasswordBytes is bcrypt's input limit, in bytes not characters.
	MaxPasswordBytes = 72

	PasswordTooLongMessage = "password cannot exceed 72 bytes"
)

// Hasher hashes and verifies user passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, falling back to DefaultHashCost when
// cost is outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted bcrypt hash of plaintext. Input longer than
// MaxPasswordBytes is a validation error.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperr.Validation("validation failed", PasswordTooLongMessage)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindHashing, "hash password", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch is not an error;
// only a malformed stored hash is.
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, apperr.Wrap(apperr.KindHashing, "malformed password hash", err)
	}
}
