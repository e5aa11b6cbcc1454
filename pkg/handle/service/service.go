package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/handle"
	"github.com/yukiapp/yuki-server/pkg/reserved"
	"github.com/yukiapp/yuki-server/pkg/user"
	"github.com/yukiapp/yuki-server/pkg/userstore"
)

var (
	ErrHandleTaken    = errors.New("handle already taken")
	ErrHandleInvalid  = errors.New("handle fails validation")
	ErrUnknownProfile = errors.New("no profile for handle")
)

// Store is the narrow data-access interface for the handle service.
// Defined here to keep the service decoupled from userstore implementation details.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	UsernameExists(ctx context.Context, handle string) (bool, error)
	ClaimHandle(ctx context.Context, userID uuid.UUID, handle string) error
	ResolveRedirect(ctx context.Context, oldHandle string) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) error
}

// Availability is the outcome of a handle availability check.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitzero"`
}

// Resolution is the outcome of resolving a handle. Exactly one of Profile
// or RedirectTo is set: RedirectTo carries the current handle when the
// requested one was renamed away from.
type Resolution struct {
	Profile    *user.Profile
	RedirectTo string
}

// Service defines the interface for handle and profile business logic
type Service interface {
	Resolve(ctx context.Context, rawHandle string) (*Resolution, error)
	CheckAvailability(ctx context.Context, rawHandle string) (*Availability, error)
	Claim(ctx context.Context, userID uuid.UUID, rawHandle string) (string, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) error
}

type handleService struct {
	store  Store
	sets   *reserved.Sets
	logger *zap.Logger
}

// NewService creates a new handle service
func NewService(store Store, sets *reserved.Sets, logger *zap.Logger) Service {
	return &handleService{
		store:  store,
		sets:   sets,
		logger: logger,
	}
}

// Resolve maps a handle to a public profile. A handle the owner renamed
// away from resolves to a redirect target carrying the current handle.
func (s *handleService) Resolve(ctx context.Context, rawHandle string) (*Resolution, error) {
	bare, _ := handle.Normalize(rawHandle)
	if reason := handle.Validate(bare, s.sets); reason != "" {
		return nil, apperrors.NotFoundError(ErrUnknownProfile, "profile not found")
	}

	usr, err := s.store.GetUserByUsername(ctx, bare)
	if err == nil {
		return &Resolution{Profile: user.ProfileOf(usr)}, nil
	}
	if !errors.Is(err, userstore.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to resolve handle: %w", err)
	}

	owner, err := s.store.ResolveRedirect(ctx, bare)
	if err != nil {
		if errors.Is(err, userstore.ErrRedirectNotFound) || errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.NotFoundError(ErrUnknownProfile, "profile not found")
		}
		return nil, fmt.Errorf("failed to resolve handle redirect: %w", err)
	}
	if owner.Username == "" {
		// Owner renamed and then released the new handle; nothing to show.
		return nil, apperrors.NotFoundError(ErrUnknownProfile, "profile not found")
	}

	return &Resolution{RedirectTo: owner.Username}, nil
}

// CheckAvailability reports whether a handle can be claimed and, if not,
// the first failing reason in priority order.
func (s *handleService) CheckAvailability(ctx context.Context, rawHandle string) (*Availability, error) {
	bare, _ := handle.Normalize(rawHandle)
	if reason := handle.Validate(bare, s.sets); reason != "" {
		return &Availability{Reason: reason}, nil
	}

	exists, err := s.store.UsernameExists(ctx, bare)
	if err != nil {
		return nil, fmt.Errorf("failed to check handle availability: %w", err)
	}
	if exists {
		return &Availability{Reason: handle.ReasonTaken}, nil
	}
	return &Availability{Available: true}, nil
}

// Claim assigns the handle to the user and returns the claimed bare handle.
// Re-claiming one's current handle is a no-op success.
func (s *handleService) Claim(ctx context.Context, userID uuid.UUID, rawHandle string) (string, error) {
	bare, _ := handle.Normalize(rawHandle)
	if reason := handle.Validate(bare, s.sets); reason != "" {
		return "", apperrors.ValidationError(ErrHandleInvalid, reason)
	}

	if err := s.store.ClaimHandle(ctx, userID, bare); err != nil {
		switch {
		case errors.Is(err, userstore.ErrHandleTaken):
			return "", apperrors.ConflictError(ErrHandleTaken, handle.ReasonTaken)
		case errors.Is(err, userstore.ErrUserNotFound):
			return "", apperrors.NotFoundError(err, "user not found")
		default:
			return "", fmt.Errorf("failed to claim handle: %w", err)
		}
	}
	return bare, nil
}

// UpdateProfile applies owner-initiated profile field changes.
func (s *handleService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) error {
	if err := s.store.UpdateProfile(ctx, userID, req); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return apperrors.NotFoundError(err, "user not found")
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
