package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/contacts"
	"github.com/yukiapp/yuki-server/pkg/contactstore"
	"github.com/yukiapp/yuki-server/pkg/user"
	"github.com/yukiapp/yuki-server/pkg/userstore"
)

// fakeStore keys contacts by owner and contact user id to mimic the
// composite uniqueness constraint.
type fakeStore struct {
	rows map[uuid.UUID]*contacts.Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]*contacts.Contact)}
}

func (f *fakeStore) Create(_ context.Context, c *contacts.Contact) error {
	for _, existing := range f.rows {
		if existing.OwnerID == c.OwnerID && existing.ContactUserID == c.ContactUserID {
			return contactstore.ErrContactExists
		}
	}
	f.rows[c.ID] = c
	return nil
}

func (f *fakeStore) List(_ context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error) {
	var entries []*contacts.Entry
	for _, c := range f.rows {
		if c.OwnerID == ownerID {
			entries = append(entries, &contacts.Entry{
				ID:            c.ID,
				ContactUserID: c.ContactUserID,
				Nickname:      c.Nickname,
				CreatedAt:     c.CreatedAt,
			})
		}
	}
	return entries, nil
}

func (f *fakeStore) Delete(_ context.Context, ownerID, contactID uuid.UUID) error {
	c, ok := f.rows[contactID]
	if !ok || c.OwnerID != ownerID {
		return contactstore.ErrContactNotFound
	}
	delete(f.rows, contactID)
	return nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserStore) addUser(username string) *user.User {
	u := user.New("test", "0x0000000000000000000000000000000000000000")
	u.Username = username
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, userstore.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) && u.Username != "" {
			return u, nil
		}
	}
	return nil, userstore.ErrUserNotFound
}

func TestAdd(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserStore()
	owner := users.addUser("owner")
	bob := users.addUser("bob")
	svc := NewService(store, users, zap.NewNop())
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		c, err := svc.Add(ctx, owner.ID, &AddRequest{ContactUserID: bob.ID, Nickname: "Bobby"})
		if err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
		if c.ContactUserID != bob.ID || c.Nickname != "Bobby" {
			t.Fatalf("unexpected contact: %+v", c)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Add(ctx, owner.ID, &AddRequest{ContactUserID: bob.ID})
		if !apperrors.Is(err, apperrors.CategoryConflict) {
			t.Fatalf("expected Conflict, got %v", err)
		}
	})

	t.Run("by handle", func(t *testing.T) {
		carol := users.addUser("carol")
		c, err := svc.Add(ctx, owner.ID, &AddRequest{Handle: "carol"})
		if err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
		if c.ContactUserID != carol.ID {
			t.Fatalf("handle resolved to wrong user: %+v", c)
		}
	})

	t.Run("self add", func(t *testing.T) {
		_, err := svc.Add(ctx, owner.ID, &AddRequest{ContactUserID: owner.ID})
		if !apperrors.Is(err, apperrors.CategoryValidation) {
			t.Fatalf("expected Validation, got %v", err)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := svc.Add(ctx, owner.ID, &AddRequest{ContactUserID: uuid.New()})
		if !apperrors.Is(err, apperrors.CategoryNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
		_, err = svc.Add(ctx, owner.ID, &AddRequest{Handle: "nobody"})
		if !apperrors.Is(err, apperrors.CategoryNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := svc.Add(ctx, owner.ID, &AddRequest{})
		if !apperrors.Is(err, apperrors.CategoryValidation) {
			t.Fatalf("expected Validation, got %v", err)
		}
	})

	t.Run("nickname too long", func(t *testing.T) {
		_, err := svc.Add(ctx, owner.ID, &AddRequest{
			ContactUserID: bob.ID,
			Nickname:      strings.Repeat("n", 65),
		})
		if !apperrors.Is(err, apperrors.CategoryValidation) {
			t.Fatalf("expected Validation, got %v", err)
		}
	})
}

func TestListAndRemove(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserStore()
	owner := users.addUser("owner")
	other := users.addUser("other")
	bob := users.addUser("bob")
	svc := NewService(store, users, zap.NewNop())
	ctx := context.Background()

	c, err := svc.Add(ctx, owner.ID, &AddRequest{ContactUserID: bob.ID})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	entries, err := svc.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ContactUserID != bob.ID {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	// Another owner cannot remove it.
	if err := svc.Remove(ctx, other.ID, c.ID); !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected NotFound for foreign owner, got %v", err)
	}

	if err := svc.Remove(ctx, owner.ID, c.ID); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := svc.Remove(ctx, owner.ID, c.ID); !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected NotFound for removed contact, got %v", err)
	}

	entries, err = svc.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %+v", entries)
	}
}
