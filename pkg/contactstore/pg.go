package contactstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yukiapp/yuki-server/pkg/contacts"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the contact store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, c *contacts.Contact) error {
	dao := toContactDao(c)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return ErrContactExists
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// entryRow is the join shape List scans into.
type entryRow struct {
	ID            uuid.UUID `bun:"id"`
	ContactUserID uuid.UUID `bun:"contact_user_id"`
	Username      *string   `bun:"username"`
	DisplayName   string    `bun:"display_name"`
	AvatarURL     string    `bun:"avatar_url"`
	Nickname      *string   `bun:"nickname"`
	CreatedAt     time.Time `bun:"created_at"`
}

func (s *pgStore) List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error) {
	var rows []entryRow
	err := s.db.NewSelect().
		Model((*ContactDao)(nil)).
		ColumnExpr("c.id, c.contact_user_id, c.nickname, c.created_at").
		ColumnExpr("u.username, u.display_name, u.avatar_url").
		Join("JOIN users AS u ON u.id = c.contact_user_id").
		Where("c.owner_id = ?", ownerID).
		Order("c.created_at DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	entries := make([]*contacts.Entry, 0, len(rows))
	for _, row := range rows {
		entry := &contacts.Entry{
			ID:            row.ID,
			ContactUserID: row.ContactUserID,
			DisplayName:   row.DisplayName,
			AvatarURL:     row.AvatarURL,
			CreatedAt:     row.CreatedAt,
		}
		if row.Username != nil {
			entry.Username = *row.Username
		}
		if row.Nickname != nil {
			entry.Nickname = *row.Nickname
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *pgStore) Delete(ctx context.Context, ownerID, contactID uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*ContactDao)(nil)).
		Where("id = ?", contactID).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrContactNotFound
	}
	return nil
}

var _ Store = (*pgStore)(nil)
