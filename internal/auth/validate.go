package auth

import (
	"errors"
	"net/mail"
	"regexp"
	"unicode"
)

const (
	MinPasswordLength = 8
	MaxEmailLength    = 255
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

var (
	ErrUsernameFormat = errors.New("username must be 3-20 letters, numbers or underscores")
	ErrEmailFormat    = errors.New("invalid email format")
	ErrPasswordShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordWeak   = errors.New("password must contain upper and lower case letters and a number")
)

// ValidateUsername checks the account name rules. Room display names are looser.
func ValidateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return ErrUsernameFormat
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return ErrEmailFormat
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailFormat
	}
	return nil
}

// ValidatePassword requires MinPasswordLength characters including an upper case letter,
// a lower case letter and a digit.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordShort
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordWeak
	}
	return nil
}
