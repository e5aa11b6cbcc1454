package userstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/user"
)

// ErrUserNotFound is returned when a user lookup finds no matching record.
var ErrUserNotFound = errors.New("user not found")

// ErrHandleTaken is returned when a handle claim loses the uniqueness race.
var ErrHandleTaken = errors.New("handle already taken")

// ErrRedirectNotFound is returned when no historical handle matches.
var ErrRedirectNotFound = errors.New("handle redirect not found")

// Store defines the interface for user and handle persistence
type Store interface {
	CreateUser(ctx context.Context, user *user.User) error
	GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) error
	SetImageURL(ctx context.Context, userID uuid.UUID, column, url string) error
	ClaimHandle(ctx context.Context, userID uuid.UUID, handle string) error
	UsernameExists(ctx context.Context, handle string) (bool, error)
	ResolveRedirect(ctx context.Context, oldHandle string) (*user.User, error)
}

// QueryOptions defines options for querying users
type QueryOptions struct {
	ID             *uuid.UUID
	AuthProviderID *string
	WalletAddress  *string
	Username       *string
}

// QueryOption is a functional option for querying users
type QueryOption func(*QueryOptions)

// WithID sets the user id filter
func WithID(id uuid.UUID) QueryOption {
	return func(opts *QueryOptions) {
		opts.ID = &id
	}
}

// WithAuthProviderID sets the external auth provider id filter
func WithAuthProviderID(authProviderID string) QueryOption {
	return func(opts *QueryOptions) {
		opts.AuthProviderID = &authProviderID
	}
}

// WithWalletAddress sets the wallet address filter
func WithWalletAddress(walletAddress string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WalletAddress = &walletAddress
	}
}

// WithUsername sets the handle filter (matched case-insensitively)
func WithUsername(username string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Username = &username
	}
}
