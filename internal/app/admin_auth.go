package app

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAdminDisabled indicates that no admin key is configured.
	ErrAdminDisabled = errors.New("admin operations are disabled")
	// ErrInvalidAdminKey indicates that the provided admin key was missing or wrong.
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// AdminAuth checks keys presented for population maintenance against a
// bcrypt hash.
type AdminAuth struct {
	hash []byte
}

// NewAdminAuth creates an AdminAuth for the given bcrypt hash. An empty hash
// disables admin operations.
func NewAdminAuth(hash string) *AdminAuth {
	return &AdminAuth{hash: []byte(hash)}
}

// Enabled reports whether an admin key is configured.
func (a *AdminAuth) Enabled() bool {
	return len(a.hash) > 0
}

// Verify returns nil when key matches the configured hash.
func (a *AdminAuth) Verify(key string) error {
	if !a.Enabled() {
		return ErrAdminDisabled
	}
	if key == "" {
		return ErrInvalidAdminKey
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(key)); err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashAdminKey returns the bcrypt hash to configure for key.
func HashAdminKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
