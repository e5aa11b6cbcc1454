package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yukiapp/yuki-server/pkg/user"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the user store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateUser(ctx context.Context, usr *user.User) error {
	dao := toUserDao(usr)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *pgStore) GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(UserDao)
	query := s.db.NewSelect().Model(dao)

	if options.ID != nil {
		query = query.Where("id = ?", *options.ID)
	}
	if options.AuthProviderID != nil {
		query = query.Where("auth_provider_id = ?", *options.AuthProviderID)
	}
	if options.WalletAddress != nil {
		query = query.Where("wallet_address = ?", strings.ToLower(*options.WalletAddress))
	}
	if options.Username != nil {
		query = query.Where("LOWER(username) = ?", strings.ToLower(*options.Username))
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(dao), nil
}

func (s *pgStore) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) error {
	q := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Where("id = ?", userID)

	updated := false
	if req.DisplayName != nil {
		q = q.Set("display_name = ?", *req.DisplayName)
		updated = true
	}
	if req.Bio != nil {
		q = q.Set("bio = ?", *req.Bio)
		updated = true
	}
	if req.Private != nil {
		q = q.Set("private = ?", *req.Private)
		updated = true
	}
	if !updated {
		return nil
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *pgStore) SetImageURL(ctx context.Context, userID uuid.UUID, column, url string) error {
	if column != "avatar_url" && column != "banner_url" {
		return fmt.Errorf("unknown image column %q", column)
	}

	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set(column+" = ?", url).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClaimHandle atomically assigns a new handle to the user. When the user
// renames away from a previous handle, a redirect row is written for it;
// any stale redirect pointing at the newly claimed handle is removed so
// resolution never bounces through a reclaimed name.
//
// Uniqueness is enforced by the lower(username) unique index; a losing
// concurrent claim surfaces as ErrHandleTaken.
func (s *pgStore) ClaimHandle(ctx context.Context, userID uuid.UUID, handle string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current := new(UserDao)
		err := tx.NewSelect().
			Model(current).
			Column("username").
			Where("id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load current handle: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*UserDao)(nil)).
			Set("username = ?", handle).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			var pgErr pgdriver.Error
			if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
				return ErrHandleTaken
			}
			return fmt.Errorf("failed to claim handle: %w", err)
		}

		// Old links keep working after a rename.
		if current.Username != nil && !strings.EqualFold(*current.Username, handle) {
			redirect := &HandleRedirectDao{
				OldHandle: strings.ToLower(*current.Username),
				UserID:    userID,
			}
			_, err = tx.NewInsert().
				Model(redirect).
				On("CONFLICT (old_handle) DO UPDATE SET user_id = EXCLUDED.user_id").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to record handle redirect: %w", err)
			}
		}

		_, err = tx.NewDelete().
			Model((*HandleRedirectDao)(nil)).
			Where("old_handle = ?", strings.ToLower(handle)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear stale redirect: %w", err)
		}
		return nil
	})
	return err
}

func (s *pgStore) UsernameExists(ctx context.Context, handle string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserDao)(nil)).
		Where("LOWER(username) = ?", strings.ToLower(handle)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (s *pgStore) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.GetUser(ctx, WithID(id))
}

func (s *pgStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.GetUser(ctx, WithUsername(username))
}

func (s *pgStore) GetUserByWalletAddress(ctx context.Context, walletAddress string) (*user.User, error) {
	return s.GetUser(ctx, WithWalletAddress(walletAddress))
}

func (s *pgStore) GetUserByAuthProviderID(ctx context.Context, authProviderID string) (*user.User, error) {
	return s.GetUser(ctx, WithAuthProviderID(authProviderID))
}

// ResolveRedirect returns the current owner of a previously claimed handle.
func (s *pgStore) ResolveRedirect(ctx context.Context, oldHandle string) (*user.User, error) {
	redirect := new(HandleRedirectDao)
	err := s.db.NewSelect().
		Model(redirect).
		Where("old_handle = ?", strings.ToLower(oldHandle)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRedirectNotFound
		}
		return nil, fmt.Errorf("failed to resolve redirect: %w", err)
	}

	return s.GetUser(ctx, WithID(redirect.UserID))
}
