// Package routes implements the request-admission policy.
//
// Every inbound path is classified as Reserved (system/auth/doc routes),
// PublicProfile (world-readable profile pages) or Protected (everything
// else, identity required). Classification is a pure function over the
// path; the reserved sets come from pkg/reserved.
package routes

import (
	"strings"

	"github.com/yukiapp/yuki-server/pkg/reserved"
)

// Class is the admission class of a request path.
type Class int

const (
	// Reserved paths belong to the application itself and bypass identity checks.
	Reserved Class = iota
	// PublicProfile paths are world-readable profile lookups.
	PublicProfile
	// Protected paths require a valid identity.
	Protected
)

func (c Class) String() string {
	switch c {
	case Reserved:
		return "reserved"
	case PublicProfile:
		return "public_profile"
	default:
		return "protected"
	}
}

// Classifier classifies request paths against the reserved sets.
type Classifier struct {
	sets *reserved.Sets
}

// NewClassifier creates a path classifier
func NewClassifier(sets *reserved.Sets) *Classifier {
	return &Classifier{sets: sets}
}

// Classify decides the admission class for a request path.
//
// A path is PublicProfile only when it has exactly one non-empty segment
// that is lowercase, carries no file-extension-like dot, and collides with
// neither a reserved route nor a reserved word.
func (c *Classifier) Classify(path string) Class {
	if c.sets.MatchesRoute(path) {
		return Reserved
	}

	segment, ok := singleSegment(path)
	if !ok {
		return Protected
	}
	if strings.Contains(segment, ".") {
		return Protected
	}
	if segment != strings.ToLower(segment) {
		return Protected
	}
	if c.sets.IsWord(segment) {
		return Reserved
	}
	return PublicProfile
}

// singleSegment returns the path's only segment, if it has exactly one.
func singleSegment(path string) (string, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", false
	}
	if strings.Contains(trimmed, "/") {
		return "", false
	}
	return trimmed, true
}
