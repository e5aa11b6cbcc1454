package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/upload"
	"github.com/yukiapp/yuki-server/pkg/userstore"
)

var (
	ErrUnknownKind     = errors.New("unknown upload kind")
	ErrNotAnImage      = errors.New("content type is not an image")
	ErrTooLarge        = errors.New("upload exceeds size ceiling")
	ErrProviderFailure = errors.New("storage provider failure")
)

// Store is the narrow user persistence interface the upload flow needs.
type Store interface {
	SetImageURL(ctx context.Context, userID uuid.UUID, column, url string) error
}

// Limits holds per-kind byte ceilings.
type Limits struct {
	MaxAvatarBytes int64
	MaxBannerBytes int64
}

// Max returns the ceiling for a kind.
func (l Limits) Max(kind upload.Kind) int64 {
	if kind == upload.KindBanner {
		return l.MaxBannerBytes
	}
	return l.MaxAvatarBytes
}

// Result reports a stored upload.
type Result struct {
	Kind upload.Kind `json:"kind"`
	URL  string      `json:"url"`
}

// Service defines the interface for upload gating business logic
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, kind upload.Kind, contentType string, size int64, r io.Reader) (*Result, error)
}

type uploadService struct {
	blobs  upload.BlobStore
	store  Store
	limits Limits
	logger *zap.Logger
}

// NewService creates a new upload service
func NewService(blobs upload.BlobStore, store Store, limits Limits, logger *zap.Logger) Service {
	return &uploadService{
		blobs:  blobs,
		store:  store,
		limits: limits,
		logger: logger,
	}
}

// Upload validates the image and stores it, then points the user's profile
// at the new URL.
//
// Validation is metadata-only: a MIME prefix check and a byte ceiling per
// kind. Content inspection is a provider concern.
func (s *uploadService) Upload(
	ctx context.Context,
	userID uuid.UUID,
	kind upload.Kind,
	contentType string,
	size int64,
	r io.Reader,
) (*Result, error) {
	if !kind.Valid() {
		return nil, apperrors.ValidationError(ErrUnknownKind, fmt.Sprintf("unknown upload kind %q", kind))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperrors.ValidationError(ErrNotAnImage, "only image uploads are accepted")
	}
	max := s.limits.Max(kind)
	if size > max {
		return nil, apperrors.ValidationError(ErrTooLarge,
			fmt.Sprintf("%s upload exceeds %d byte ceiling", kind, max))
	}

	key := fmt.Sprintf("%s/%s/%s", kind, userID, uuid.New())
	url, err := s.blobs.Put(ctx, key, contentType, io.LimitReader(r, max))
	if err != nil {
		return nil, apperrors.UpstreamFailureError(
			fmt.Errorf("%w: %w", ErrProviderFailure, err), "failed to store upload")
	}

	if err := s.store.SetImageURL(ctx, userID, kind.Column(), url); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.NotFoundError(err, "user not found")
		}
		return nil, fmt.Errorf("failed to update profile image: %w", err)
	}

	return &Result{Kind: kind, URL: url}, nil
}
