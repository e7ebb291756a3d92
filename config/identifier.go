package config

import (
	"errors"
	"fmt"
	"regexp"
)

const maxIdentifierLength = 64

// ErrInvalidIdentifier is the error returned for malformed network and account names.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifiers are used as configuration keys, so they must not contain key delimiters or
// upper-case letters.
var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateIdentifier makes sure the given string is a valid network or account name.
func ValidateIdentifier(id string) error {
	switch {
	case len(id) == 0:
		return fmt.Errorf("%w: cannot be empty", ErrInvalidIdentifier)
	case len(id) > maxIdentifierLength:
		return fmt.Errorf("%w: must be at most %d characters long", ErrInvalidIdentifier, maxIdentifierLength)
	case !validID.MatchString(id):
		return fmt.Errorf("%w: must start with a lower-case letter or number and only contain lower-case letters, numbers, _ and -", ErrInvalidIdentifier)
	default:
		return nil
	}
}
