package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// PINs are short numeric codes, 4 to 6 digits
var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// ValidPinFormat reports whether a submitted PIN matches the allowed format
func ValidPinFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}

// HashPin hashes a plain text PIN using bcrypt
func HashPin(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePin compares a bcrypt hashed PIN with a plain text PIN.
// bcrypt's compare is constant-time over the hash.
func ComparePin(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
