package passkeystore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/passkey"
	"github.com/yukiapp/yuki-server/pkg/pgutil"
	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &ChallengeDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed passkeystore tests")
}

func newTestChallenge(sessionKey string, ttl time.Duration) *passkey.Challenge {
	return &passkey.Challenge{
		ID:         uuid.New(),
		SessionKey: sessionKey,
		Value:      []byte("0123456789abcdef0123456789abcdef"),
		ExpiresAt:  time.Now().Add(ttl),
		CreatedAt:  time.Now(),
	}
}

func TestChallengePGStore_ConsumeIsSingleUse(t *testing.T) {
	ctx, s := setupStore(t)

	c := newTestChallenge("session-1", time.Minute)
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := s.Consume(ctx, c.ID, "session-1")
	if err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}
	if string(got.Value) != string(c.Value) {
		t.Fatalf("challenge value mismatch")
	}
	if !got.Used {
		t.Fatalf("consumed challenge should be marked used")
	}

	if _, err := s.Consume(ctx, c.ID, "session-1"); !errors.Is(err, ErrChallengeSpent) {
		t.Fatalf("expected ErrChallengeSpent on second consume, got %v", err)
	}
}

func TestChallengePGStore_ConsumeChecksSessionAndExpiry(t *testing.T) {
	ctx, s := setupStore(t)

	c := newTestChallenge("session-1", time.Minute)
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// A different session must not be able to spend the challenge.
	if _, err := s.Consume(ctx, c.ID, "session-2"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound for wrong session, got %v", err)
	}

	expired := newTestChallenge("session-1", -time.Minute)
	if err := s.Create(ctx, expired); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := s.Consume(ctx, expired.ID, "session-1"); !errors.Is(err, ErrChallengeSpent) {
		t.Fatalf("expected ErrChallengeSpent for expired challenge, got %v", err)
	}

	if _, err := s.Consume(ctx, uuid.New(), "session-1"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound for unknown id, got %v", err)
	}
}

func TestChallengePGStore_DeleteExpired(t *testing.T) {
	ctx, s := setupStore(t)

	live := newTestChallenge("session-1", time.Minute)
	stale := newTestChallenge("session-1", -time.Minute)
	for _, c := range []*passkey.Challenge{live, stale} {
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	n, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired challenge removed, got %d", n)
	}

	if _, err := s.Consume(ctx, live.ID, "session-1"); err != nil {
		t.Fatalf("live challenge should still be consumable: %v", err)
	}
}
