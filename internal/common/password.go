// File: internal/common/password.go
package common

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordSpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?/"

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether the plaintext password matches the hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordComplexity enforces the registration password policy: at
// least one digit, one lowercase letter, one uppercase letter, and one
// special character. Length bounds are handled by the binding tags.
func ValidatePasswordComplexity(password string) error {
	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
		if strings.ContainsRune(passwordSpecialChars, r) {
			hasSpecial = true
		}
	}
	if !hasDigit || !hasLower || !hasUpper || !hasSpecial {
		return NewValidationAPIError(map[string]string{
			"password": "must contain a digit, a lowercase letter, an uppercase letter, and a special character",
		})
	}
	return nil
}
