package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the domain model for a registered user.
type User struct {
	ID             uuid.UUID
	AuthProviderID string
	WalletAddress  string
	Username       string
	DisplayName    string
	Bio            string
	AvatarURL      string
	BannerURL      string
	Private        bool
	CreatedAt      time.Time
}

// New creates a User from the given parameters. The username stays empty
// until the owner claims a handle.
func New(authProviderID, walletAddress string) *User {
	return &User{
		ID:             uuid.New(),
		AuthProviderID: authProviderID,
		WalletAddress:  walletAddress,
		CreatedAt:      time.Now(),
	}
}

// Profile is the public-facing projection of a User.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitzero"`
	Bio         string `json:"bio,omitzero"`
	AvatarURL   string `json:"avatar_url,omitzero"`
	BannerURL   string `json:"banner_url,omitzero"`
	Private     bool   `json:"private,omitzero"`
}

// ProfileOf builds the public projection for a user.
func ProfileOf(u *User) *Profile {
	return &Profile{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		BannerURL:   u.BannerURL,
		Private:     u.Private,
	}
}

// UpdateRequest carries owner-initiated profile field changes. Nil fields
// are left untouched.
type UpdateRequest struct {
	DisplayName *string `json:"display_name,omitzero"`
	Bio         *string `json:"bio,omitzero"`
	Private     *bool   `json:"private,omitzero"`
}
