package walletstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yukiapp/yuki-server/pkg/wallet"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the wallet envelope store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// Create persists a new envelope. The unique index on user_id makes the
// existence check and the insert one atomic operation: of two concurrent
// creation attempts for the same user exactly one succeeds and the other
// gets ErrEnvelopeExists.
func (s *pgStore) Create(ctx context.Context, env *wallet.Envelope) error {
	dao := toEnvelopeDao(env)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrEnvelopeExists
		}
		return fmt.Errorf("failed to create wallet envelope: %w", err)
	}

	return nil
}

// Get returns the stored ciphertext and metadata verbatim. No cryptographic
// operation happens here or anywhere else server-side.
func (s *pgStore) Get(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error) {
	dao := new(EnvelopeDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnvelopeNotFound
		}
		return nil, fmt.Errorf("failed to get wallet envelope: %w", err)
	}

	return toEnvelope(dao), nil
}

// UpdatePasskeyCounter advances the stored signature counter. The conditional
// update is a single statement, so concurrent authentication attempts for the
// same user serialize in Postgres and at most one can observe a given stored
// value. A counter that does not strictly increase yields ErrCounterRegression.
func (s *pgStore) UpdatePasskeyCounter(ctx context.Context, userID uuid.UUID, newCounter uint32) error {
	res, err := s.db.NewUpdate().
		Model((*EnvelopeDao)(nil)).
		Set("signature_counter = ?", newCounter).
		Where("user_id = ?", userID).
		Where("signature_counter < ?", newCounter).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update signature counter: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		// Either no envelope or a stale counter; disambiguate for the caller.
		exists, err := s.db.NewSelect().
			Model((*EnvelopeDao)(nil)).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check envelope existence: %w", err)
		}
		if !exists {
			return ErrEnvelopeNotFound
		}
		return ErrCounterRegression
	}
	return nil
}

var _ Store = (*pgStore)(nil)
