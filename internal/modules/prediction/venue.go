package prediction

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxVenueChars bounds the user-supplied venue name so prompts stay small.
const MaxVenueChars = 200

var (
	ErrEmptyVenue   = errors.New("venue must not be empty")
	ErrVenueTooLong = errors.New("venue name too long")
)

// NormalizeVenue trims the raw query and enforces the length bounds.
// Called before anything else so an invalid venue never reaches the upstream.
func NormalizeVenue(raw string) (string, error) {
	venue := strings.TrimSpace(raw)
	if venue == "" {
		return "", ErrEmptyVenue
	}
	if utf8.RuneCountInString(venue) > MaxVenueChars {
		return "", ErrVenueTooLong
	}
	return venue, nil
}
