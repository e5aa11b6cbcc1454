package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenIssuer_IssueValidate(t *testing.T) {
	issuer := NewTokenIssuer("secret", "yuki", time.Hour)
	userID := uuid.New()

	token, session, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if session.UserID != userID || session.Key == "" {
		t.Fatalf("unexpected session: %+v", session)
	}

	got, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if got.UserID != userID || got.Key != session.Key {
		t.Fatalf("session roundtrip mismatch: %+v vs %+v", got, session)
	}

	// Each session gets its own key.
	_, other, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("second Issue() failed: %v", err)
	}
	if other.Key == session.Key {
		t.Fatalf("session keys must be unique")
	}
}

func TestTokenIssuer_RejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", "yuki", time.Hour)
	userID := uuid.New()

	token, _, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := NewTokenIssuer("other-secret", "yuki", time.Hour).Validate(token); err == nil {
		t.Fatalf("expected rejection for wrong secret")
	}
	if _, err := NewTokenIssuer("secret", "other-issuer", time.Hour).Validate(token); err == nil {
		t.Fatalf("expected rejection for wrong issuer")
	}
	if _, err := issuer.Validate("not-a-token"); err == nil {
		t.Fatalf("expected rejection for garbage token")
	}

	expired, _, err := NewTokenIssuer("secret", "yuki", -time.Minute).Issue(userID)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if _, err := issuer.Validate(expired); err == nil {
		t.Fatalf("expected rejection for expired token")
	}
}

func TestGuard_Identity(t *testing.T) {
	issuer := NewTokenIssuer("secret", "yuki", time.Hour)
	userID := uuid.New()
	token, session, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	resolve := func(_ context.Context, address string) (uuid.UUID, error) {
		if address == "0xAbC0000000000000000000000000000000000001" {
			return userID, nil
		}
		return uuid.Nil, errors.New("unknown wallet")
	}
	guard := NewGuard(issuer, resolve)

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		ctx, ok := guard.Authenticated(req)
		if !ok {
			t.Fatalf("expected authenticated request")
		}
		if id, _ := UserIDFromContext(ctx); id != userID {
			t.Fatalf("user id mismatch: %s", id)
		}
		if key, _ := SessionKeyFromContext(ctx); key != session.Key {
			t.Fatalf("session key mismatch: %s", key)
		}
	})

	t.Run("invalid bearer token does not fall through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		req.Header.Set("X-Wallet-Address", "0xAbC0000000000000000000000000000000000001")

		if _, ok := guard.Authenticated(req); ok {
			t.Fatalf("expected rejection for invalid bearer token")
		}
	})

	t.Run("wallet header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Wallet-Address", "0xAbC0000000000000000000000000000000000001")

		ctx, ok := guard.Authenticated(req)
		if !ok {
			t.Fatalf("expected authenticated request")
		}
		if id, _ := UserIDFromContext(ctx); id != userID {
			t.Fatalf("user id mismatch: %s", id)
		}
		if addr, _ := WalletAddressFromContext(ctx); addr != "0xabc0000000000000000000000000000000000001" {
			t.Fatalf("address not normalized: %s", addr)
		}
		if key, _ := SessionKeyFromContext(ctx); key != "wallet:0xabc0000000000000000000000000000000000001" {
			t.Fatalf("session key mismatch: %s", key)
		}
	})

	t.Run("unknown wallet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Wallet-Address", "0x0000000000000000000000000000000000000009")

		if _, ok := guard.Authenticated(req); ok {
			t.Fatalf("expected rejection for unknown wallet")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		if _, ok := guard.Authenticated(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
			t.Fatalf("expected anonymous request")
		}
	})
}
