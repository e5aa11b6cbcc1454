package auth

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user's id
	ContextKeyUserID contextKey = "user_id"
	// ContextKeyWalletAddress is the context key for the authenticated wallet address
	ContextKeyWalletAddress contextKey = "wallet_address"
	// ContextKeySessionKey is the context key for the opaque session key,
	// used to bind passkey challenges to a session
	ContextKeySessionKey contextKey = "session_key"
)

// WithUserID adds the user id to the context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserIDFromContext retrieves the user id from the context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// WithWalletAddress adds the wallet address to the context
func WithWalletAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, ContextKeyWalletAddress, address)
}

// WalletAddressFromContext retrieves the wallet address from the context
func WalletAddressFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(ContextKeyWalletAddress).(string)
	return addr, ok
}

// WithSessionKey adds the session key to the context
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeySessionKey, key)
}

// SessionKeyFromContext retrieves the session key from the context
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ContextKeySessionKey).(string)
	return key, ok
}
