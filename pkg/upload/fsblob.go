package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fsBlobStore writes blobs to a local directory and builds URLs from a
// static base. It backs development and single-node deployments; hosted
// object storage slots in behind the same BlobStore interface.
type fsBlobStore struct {
	dir     string
	baseURL string
}

// NewFSBlobStore creates a filesystem-backed blob store rooted at dir.
// Objects become reachable under baseURL/<key>.
func NewFSBlobStore(dir, baseURL string) (*fsBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &fsBlobStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *fsBlobStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob subdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

var _ BlobStore = (*fsBlobStore)(nil)
