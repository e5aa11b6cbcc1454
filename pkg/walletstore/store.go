package walletstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/wallet"
)

// ErrEnvelopeNotFound is returned when no envelope exists for the user.
var ErrEnvelopeNotFound = errors.New("wallet envelope not found")

// ErrEnvelopeExists is returned when a second envelope creation is attempted.
var ErrEnvelopeExists = errors.New("wallet envelope already exists")

// ErrCounterRegression is returned when a signature counter update does not
// advance the stored value.
var ErrCounterRegression = errors.New("signature counter did not advance")

// Store defines the interface for wallet envelope persistence
type Store interface {
	Create(ctx context.Context, env *wallet.Envelope) error
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error)
	UpdatePasskeyCounter(ctx context.Context, userID uuid.UUID, newCounter uint32) error
}
