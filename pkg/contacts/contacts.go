// Package contacts defines the contact list domain model.
//
// A contact is an asymmetric owner-to-user relation with an optional
// nickname. The pair (owner, contact) is unique and a user cannot add
// itself.
package contacts

import (
	"time"

	"github.com/google/uuid"
)

// Contact links an owner to another user.
type Contact struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"-"`
	ContactUserID uuid.UUID `json:"contact_user_id"`
	Nickname      string    `json:"nickname,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
}

// New creates a Contact owned by ownerID pointing at contactUserID.
func New(ownerID, contactUserID uuid.UUID, nickname string) *Contact {
	return &Contact{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		ContactUserID: contactUserID,
		Nickname:      nickname,
		CreatedAt:     time.Now(),
	}
}

// Entry is a contact joined with the contact user's public identity,
// the shape the list endpoint returns.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	ContactUserID uuid.UUID `json:"contact_user_id"`
	Username      string    `json:"username,omitzero"`
	DisplayName   string    `json:"display_name,omitzero"`
	AvatarURL     string    `json:"avatar_url,omitzero"`
	Nickname      string    `json:"nickname,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
}
