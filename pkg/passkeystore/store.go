// Package passkeystore persists single-use passkey challenges.
package passkeystore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/passkey"
)

var (
	// ErrChallengeNotFound indicates no live challenge matched.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeSpent indicates the challenge was already consumed or expired.
	ErrChallengeSpent = errors.New("challenge already spent")
)

// Store defines the interface for challenge persistence.
type Store interface {
	// Create persists a freshly issued challenge.
	Create(ctx context.Context, c *passkey.Challenge) error
	// Consume atomically marks the challenge used and returns it. A
	// challenge can be consumed exactly once, and only before expiry.
	Consume(ctx context.Context, id uuid.UUID, sessionKey string) (*passkey.Challenge, error)
	// DeleteExpired removes challenges past their TTL. Called periodically.
	DeleteExpired(ctx context.Context) (int64, error)
}
