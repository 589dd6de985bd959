package services

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 8

var ErrWeakPassword = errors.New("weak password")

// ValidatePasswordStrength requires minPasswordLength runes with at least one
// upper case letter, one lower case letter and one digit.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}

	var upper, lower, digit bool
	for _, char := range password {
		upper = upper || unicode.IsUpper(char)
		lower = lower || unicode.IsLower(char)
		digit = digit || unicode.IsDigit(char)
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}
