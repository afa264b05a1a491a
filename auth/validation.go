package auth

import (
	"errors"
	"regexp"
)

// Password policy: 8 to 12 alphanumeric characters with at least one
// lowercase and one uppercase letter. Same rule the registration form
// enforces.
var (
	passwordShape = regexp.MustCompile(`^[A-Za-z0-9]{8,12}$`)
	hasLower      = regexp.MustCompile(`[a-z]`)
	hasUpper      = regexp.MustCompile(`[A-Z]`)
)

// ValidatePassword checks a candidate password against the account
// password policy. The returned error message is user-facing.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New(msgPasswordRequired)
	}
	if !passwordShape.MatchString(password) ||
		!hasLower.MatchString(password) ||
		!hasUpper.MatchString(password) {
		return errors.New(msgPasswordPolicy)
	}
	return nil
}
