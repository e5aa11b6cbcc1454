package userstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/pgutil"
	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
	"github.com/yukiapp/yuki-server/pkg/user"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &UserDao{}, &HandleRedirectDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if err := mghelper.CreateUniqueExpressionIndex(ctx, db,
		"users", "idx_users_lower_username", "lower(username)"); err != nil {
		t.Fatalf("failed to create username index: %v", err)
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

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed userstore tests")
}

func newTestUser(walletAddress string) *user.User {
	return user.New("wallet:"+walletAddress, walletAddress)
}

func TestUserPGStore_CreateAndLookups(t *testing.T) {
	ctx, s := setupStore(t)

	u := newTestUser("0x1111111111111111111111111111111111111111")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	byWallet, err := s.GetUserByWalletAddress(ctx, "0x1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("GetUserByWalletAddress() failed: %v", err)
	}
	if byWallet.ID != u.ID {
		t.Fatalf("id mismatch: got %s want %s", byWallet.ID, u.ID)
	}

	byProvider, err := s.GetUserByAuthProviderID(ctx, u.AuthProviderID)
	if err != nil {
		t.Fatalf("GetUserByAuthProviderID() failed: %v", err)
	}
	if byProvider.ID != u.ID {
		t.Fatalf("id mismatch: got %s want %s", byProvider.ID, u.ID)
	}

	_, err = s.GetUserByWalletAddress(ctx, "0x2222222222222222222222222222222222222222")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserPGStore_ClaimHandleFlow(t *testing.T) {
	ctx, s := setupStore(t)

	alice := newTestUser("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob := newTestUser("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	for _, u := range []*user.User{alice, bob} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	if err := s.ClaimHandle(ctx, alice.ID, "alice"); err != nil {
		t.Fatalf("ClaimHandle() failed: %v", err)
	}

	// Uniqueness is case-insensitive.
	exists, err := s.UsernameExists(ctx, "ALICE")
	if err != nil {
		t.Fatalf("UsernameExists() failed: %v", err)
	}
	if !exists {
		t.Fatalf("expected handle to exist ignoring case")
	}

	if err := s.ClaimHandle(ctx, bob.ID, "Alice"); !errors.Is(err, ErrHandleTaken) {
		t.Fatalf("expected ErrHandleTaken, got %v", err)
	}

	// Renaming writes a redirect for the vacated handle.
	if err := s.ClaimHandle(ctx, alice.ID, "alice2"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	redirected, err := s.ResolveRedirect(ctx, "alice")
	if err != nil {
		t.Fatalf("ResolveRedirect() failed: %v", err)
	}
	if redirected.ID != alice.ID {
		t.Fatalf("redirect target mismatch: got %s want %s", redirected.ID, alice.ID)
	}
	if redirected.Username != "alice2" {
		t.Fatalf("expected current handle alice2, got %q", redirected.Username)
	}

	// The vacated handle is claimable again; the stale redirect goes away.
	if err := s.ClaimHandle(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("reclaim of vacated handle failed: %v", err)
	}
	if _, err := s.ResolveRedirect(ctx, "alice"); !errors.Is(err, ErrRedirectNotFound) {
		t.Fatalf("expected stale redirect to be removed, got %v", err)
	}

	if err := s.ClaimHandle(ctx, uuid.New(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown user, got %v", err)
	}
}

func TestUserPGStore_UpdateProfileAndImages(t *testing.T) {
	ctx, s := setupStore(t)

	u := newTestUser("0xcccccccccccccccccccccccccccccccccccccccc")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	name := "Carol"
	private := true
	err := s.UpdateProfile(ctx, u.ID, &user.UpdateRequest{DisplayName: &name, Private: &private})
	if err != nil {
		t.Fatalf("UpdateProfile() failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if got.DisplayName != "Carol" || !got.Private {
		t.Fatalf("profile not updated: %+v", got)
	}

	err = s.UpdateProfile(ctx, uuid.New(), &user.UpdateRequest{DisplayName: &name})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := s.SetImageURL(ctx, u.ID, "avatar_url", "/static/blobs/avatar/x"); err != nil {
		t.Fatalf("SetImageURL() failed: %v", err)
	}
	if err := s.SetImageURL(ctx, u.ID, "username", "oops"); err == nil {
		t.Fatalf("expected unknown column to be rejected")
	}
}
