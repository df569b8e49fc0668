// Package username holds the syntactic rules for usernames, shared by the API and the
// profile dialog so both reject the same inputs without a round-trip.
package username

import (
	"errors"
	"regexp"
	"strings"
)

// Length bounds.
const (
	MinLength = 3
	MaxLength = 40
)

var (
	ErrEmpty    = errors.New("username is required")
	ErrTooShort = errors.New("username must be at least 3 characters")
	ErrTooLong  = errors.New("username must be at most 40 characters")
	ErrCharset  = errors.New("username may only contain letters, numbers, '-' and '_'")
)

var allowed = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks s against the local rules. Leading and trailing whitespace is ignored.
func Validate(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ErrEmpty
	case len(s) < MinLength:
		return ErrTooShort
	case len(s) > MaxLength:
		return ErrTooLong
	case !allowed.MatchString(s):
		return ErrCharset
	}
	return nil
}

// Key is the case-insensitive identity under which a username is reserved.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal reports whether a and b name the same reservation.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
