// Package handle implements public username (handle) rules: normalization,
// validation and availability reason codes.
//
// A handle is 3-20 characters of [a-zA-Z0-9_], unique case-insensitively
// across all users and disjoint from the reserved word set. Handles render
// with a single leading @.
package handle

import (
	"regexp"
	"strings"

	"github.com/yukiapp/yuki-server/pkg/reserved"
)

const (
	// MinLength is the minimum handle length
	MinLength = 3
	// MaxLength is the maximum handle length
	MaxLength = 20
)

// Availability reason codes, in check priority order.
const (
	ReasonTooShort     = "TOO_SHORT"
	ReasonTooLong      = "TOO_LONG"
	ReasonInvalidChars = "INVALID_CHARS"
	ReasonReserved     = "RESERVED"
	ReasonTaken        = "TAKEN"
)

var validChars = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Normalize strips any number of leading @ and returns the bare handle
// plus its canonical display form with exactly one leading @.
func Normalize(input string) (bare, display string) {
	bare = strings.TrimLeft(strings.TrimSpace(input), "@")
	return bare, "@" + bare
}

// LookupKey returns the case-folded key a handle is matched under.
func LookupKey(input string) string {
	bare, _ := Normalize(input)
	return strings.ToLower(bare)
}

// Validate checks a candidate handle against the static rules, in priority
// order, and returns the first failing reason code or the empty string.
// TAKEN is a store-level concern and is not checked here.
func Validate(candidate string, sets *reserved.Sets) string {
	bare, _ := Normalize(candidate)

	if len(bare) < MinLength {
		return ReasonTooShort
	}
	if len(bare) > MaxLength {
		return ReasonTooLong
	}
	if !validChars.MatchString(bare) {
		return ReasonInvalidChars
	}
	if sets.IsWord(bare) {
		return ReasonReserved
	}
	return ""
}
