package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/contacts"
	"github.com/yukiapp/yuki-server/pkg/contactstore"
	"github.com/yukiapp/yuki-server/pkg/user"
	"github.com/yukiapp/yuki-server/pkg/userstore"
)

var (
	ErrSelfContact     = errors.New("cannot add yourself as a contact")
	ErrContactExists   = errors.New("contact already exists")
	ErrUnknownUser     = errors.New("no such user")
	ErrMissingContact  = errors.New("contact user id or handle required")
	ErrNicknameTooLong = errors.New("nickname too long")
)

const maxNicknameLength = 64

// Store is the narrow contact persistence interface.
type Store interface {
	Create(ctx context.Context, c *contacts.Contact) error
	List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error)
	Delete(ctx context.Context, ownerID, contactID uuid.UUID) error
}

// UserStore resolves add-by-handle requests to user ids.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
}

// AddRequest identifies the user to add, by id or by handle, with an
// optional nickname.
type AddRequest struct {
	ContactUserID uuid.UUID `json:"contact_user_id,omitzero"`
	Handle        string    `json:"handle,omitzero"`
	Nickname      string    `json:"nickname,omitzero"`
}

// Service defines the interface for contact list business logic
type Service interface {
	Add(ctx context.Context, ownerID uuid.UUID, req *AddRequest) (*contacts.Contact, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error)
	Remove(ctx context.Context, ownerID, contactID uuid.UUID) error
}

type contactService struct {
	store  Store
	users  UserStore
	logger *zap.Logger
}

// NewService creates a new contact service
func NewService(store Store, users UserStore, logger *zap.Logger) Service {
	return &contactService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// Add creates a contact row for the owner. The target may be given by id
// or by handle; self-adds and duplicates are rejected.
func (s *contactService) Add(ctx context.Context, ownerID uuid.UUID, req *AddRequest) (*contacts.Contact, error) {
	if len(req.Nickname) > maxNicknameLength {
		return nil, apperrors.ValidationError(ErrNicknameTooLong, "nickname too long")
	}

	target, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, apperrors.ValidationError(ErrSelfContact, "cannot add yourself as a contact")
	}

	c := contacts.New(ownerID, target.ID, req.Nickname)
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, contactstore.ErrContactExists) {
			return nil, apperrors.ConflictError(ErrContactExists, "contact already exists")
		}
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}
	return c, nil
}

func (s *contactService) resolveTarget(ctx context.Context, req *AddRequest) (*user.User, error) {
	var (
		target *user.User
		err    error
	)
	switch {
	case req.ContactUserID != uuid.Nil:
		target, err = s.users.GetUserByID(ctx, req.ContactUserID)
	case req.Handle != "":
		target, err = s.users.GetUserByUsername(ctx, req.Handle)
	default:
		return nil, apperrors.ValidationError(ErrMissingContact, "contact_user_id or handle required")
	}
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.NotFoundError(ErrUnknownUser, "no such user")
		}
		return nil, fmt.Errorf("failed to resolve contact target: %w", err)
	}
	return target, nil
}

func (s *contactService) List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error) {
	entries, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return entries, nil
}

func (s *contactService) Remove(ctx context.Context, ownerID, contactID uuid.UUID) error {
	if err := s.store.Delete(ctx, ownerID, contactID); err != nil {
		if errors.Is(err, contactstore.ErrContactNotFound) {
			return apperrors.NotFoundError(err, "contact not found")
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}
