package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword hashes students', universities' and admins' passwords alike.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword returns nil on a match. An account without a hash never matches.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashError maps a HashPassword failure to the caller-facing error for op.
func HashError(op string, err error) error {
	if errors.Is(err, ErrPasswordTooLong) {
		return E(CodeInvalidArgument, op, "password must be at most 72 bytes", err)
	}
	return E(CodeInternal, op, "failed to hash password", err)
}
