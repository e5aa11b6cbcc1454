// Package upload gates profile image uploads.
//
// The server validates content type and size ceilings, then hands the
// bytes to a BlobStore. Storage itself is a provider concern behind the
// narrow capability interface so it can be swapped per environment.
package upload

import (
	"context"
	"io"
)

// Kind names the profile image slot an upload targets.
type Kind string

const (
	KindAvatar Kind = "avatar"
	KindBanner Kind = "banner"
)

// Valid reports whether the kind is a known value.
func (k Kind) Valid() bool {
	return k == KindAvatar || k == KindBanner
}

// Column returns the users-table column the kind maps to.
func (k Kind) Column() string {
	if k == KindBanner {
		return "banner_url"
	}
	return "avatar_url"
}

// BlobStore is the storage provider capability. Put streams the object
// and returns its public URL.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
