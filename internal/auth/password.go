package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordResult is the outcome of comparing a submitted password with the
// stored column value.
type PasswordResult int

const (
	PasswordEmpty     PasswordResult = iota // nothing stored
	PasswordMatch                           // bcrypt hash matched
	PasswordMismatch                        // well-formed hash, wrong password
	PasswordNotHashed                       // stored value is not a bcrypt hash
)

func (r PasswordResult) String() string {
	switch r {
	case PasswordEmpty:
		return "empty"
	case PasswordMatch:
		return "match"
	case PasswordMismatch:
		return "mismatch"
	case PasswordNotHashed:
		return "not_hashed"
	}
	return "unknown"
}

// ComparePassword tries stored as a bcrypt hash. Only a wrong password against
// a well-formed hash is a mismatch; any failure to read stored as a hash maps
// to PasswordNotHashed.
func ComparePassword(stored, plain string) PasswordResult {
	if stored == "" {
		return PasswordEmpty
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
	if err == nil {
		return PasswordMatch
	}
	if isHashFormatError(err) {
		return PasswordNotHashed
	}
	return PasswordMismatch
}

// VerifyPassword reports whether plain matches stored. Hashed rows are
// checked with bcrypt; legacy rows that hold plaintext fall back to an
// equality check. The hash attempt always comes first.
func VerifyPassword(stored, plain string) bool {
	switch ComparePassword(stored, plain) {
	case PasswordMatch:
		return true
	case PasswordNotHashed:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	default:
		return false
	}
}

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// isHashFormatError reports whether bcrypt failed before it could compare,
// e.g. bad prefix, cost, version, length or salt encoding.
func isHashFormatError(err error) bool {
	return !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) &&
		!errors.Is(err, bcrypt.ErrPasswordTooLong)
}
