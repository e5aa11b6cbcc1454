package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// WalletResolver maps a wallet address to the owning user's id.
// It lets the middleware stay decoupled from the user store implementation.
type WalletResolver func(ctx context.Context, address string) (uuid.UUID, error)

// Guard establishes the identity for inbound requests. It accepts either a
// server-issued session token (Authorization: Bearer) or an X-Wallet-Address
// header resolved through the user store. Which routes require identity is
// decided by the route classifier, not here.
type Guard struct {
	tokens  *TokenIssuer
	resolve WalletResolver
}

// NewGuard creates a session guard
func NewGuard(tokens *TokenIssuer, resolve WalletResolver) *Guard {
	return &Guard{
		tokens:  tokens,
		resolve: resolve,
	}
}

// Identify attaches the request identity to the context if present. It never
// rejects; admission decisions belong to the route classifier middleware.
func (g *Guard) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := g.identity(r)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticated reports whether the request carries a valid identity, and
// returns a context with that identity attached.
func (g *Guard) Authenticated(r *http.Request) (context.Context, bool) {
	return g.identity(r)
}

func (g *Guard) identity(r *http.Request) (context.Context, bool) {
	ctx := r.Context()

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		session, err := g.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err == nil {
			ctx = WithUserID(ctx, session.UserID)
			ctx = WithSessionKey(ctx, session.Key)
			return ctx, true
		}
		return ctx, false
	}

	// Header fallback for tooling and tests.
	if addr := r.Header.Get("X-Wallet-Address"); addr != "" && g.resolve != nil {
		userID, err := g.resolve(ctx, addr)
		if err == nil {
			ctx = WithUserID(ctx, userID)
			ctx = WithWalletAddress(ctx, strings.ToLower(addr))
			ctx = WithSessionKey(ctx, "wallet:"+strings.ToLower(addr))
			return ctx, true
		}
	}

	return ctx, false
}
