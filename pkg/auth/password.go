package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifyPassword checks a provided password against a configured secret.
// The secret may be stored either as a bcrypt hash (recognized by the "$2"
// prefix) or as a plain string, which is compared in constant time.
func VerifyPassword(provided, configured string) bool {
	if provided == "" || configured == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}

// HashPassword produces a bcrypt hash suitable for the *_PASSWORD settings.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
