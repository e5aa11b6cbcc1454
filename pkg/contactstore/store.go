// Package contactstore persists contact list rows.
package contactstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/contacts"
)

var (
	// ErrContactExists indicates the (owner, contact) pair is already present.
	ErrContactExists = errors.New("contact already exists")
	// ErrContactNotFound indicates no contact row matched.
	ErrContactNotFound = errors.New("contact not found")
)

// Store defines the interface for contact persistence.
type Store interface {
	// Create persists a contact. The unique (owner, contact) index makes
	// duplicate detection atomic with the insert.
	Create(ctx context.Context, c *contacts.Contact) error
	// List returns the owner's contacts joined with each contact user's
	// public identity, newest first.
	List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error)
	// Delete removes a contact by id, scoped to the owner.
	Delete(ctx context.Context, ownerID, contactID uuid.UUID) error
}
