package passkeystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/passkey"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the challenge store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, c *passkey.Challenge) error {
	dao := toChallengeDao(c)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	return nil
}

// Consume flips used in a single conditional update, so concurrent
// verification attempts against the same challenge serialize in Postgres
// and exactly one wins.
func (s *pgStore) Consume(ctx context.Context, id uuid.UUID, sessionKey string) (*passkey.Challenge, error) {
	dao := new(ChallengeDao)
	res, err := s.db.NewUpdate().
		Model(dao).
		Set("used = TRUE").
		Where("id = ?", id).
		Where("session_key = ?", sessionKey).
		Where("used = FALSE").
		Where("expires_at > ?", time.Now()).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.consumeFailure(ctx, id, sessionKey)
		}
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil, s.consumeFailure(ctx, id, sessionKey)
	}

	return toChallenge(dao), nil
}

// consumeFailure disambiguates a failed consume: spent or simply unknown.
func (s *pgStore) consumeFailure(ctx context.Context, id uuid.UUID, sessionKey string) error {
	exists, err := s.db.NewSelect().
		Model((*ChallengeDao)(nil)).
		Where("id = ?", id).
		Where("session_key = ?", sessionKey).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check challenge existence: %w", err)
	}
	if exists {
		return ErrChallengeSpent
	}
	return ErrChallengeNotFound
}

func (s *pgStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*ChallengeDao)(nil)).
		Where("expires_at <= ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

var _ Store = (*pgStore)(nil)
