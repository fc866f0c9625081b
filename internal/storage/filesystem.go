package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

// FileStore persists generated artifacts onto the local filesystem, one folder
// per content kind, and builds the public URL each file is served under. It is
// the only component that writes below the storage root.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore configures a store rooted at basePath whose files are served
// from {baseURL}/files/. The directory tree is not touched; call EnsureLayout.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	return &FileStore{
		basePath: filepath.Clean(basePath),
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// BaseURL returns the externally visible base URL without a trailing slash.
func (s *FileStore) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

// EnsureLayout creates the root and one folder per content kind. It is safe to
// call repeatedly.
func (s *FileStore) EnsureLayout() error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("storage: ensure base path: %w", err)
	}
	for _, kind := range domain.ContentKinds {
		if err := os.MkdirAll(filepath.Join(s.basePath, kind.Folder()), 0o755); err != nil {
			return fmt.Errorf("storage: ensure %s folder: %w", kind.Folder(), err)
		}
	}
	return nil
}

// Store writes data to {root}/{folder}/{filename}, replacing any existing file
// of the same name, and returns the stored artifact with its retrieval URL.
func (s *FileStore) Store(ctx context.Context, data []byte, kind domain.ContentKind, filename string) (*domain.StoredArtifact, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	folder := kind.Folder()
	fullPath := filepath.Join(s.basePath, folder, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure directory: %w", domain.ErrStorage, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: write file: %w", domain.ErrStorage, err)
	}
	return &domain.StoredArtifact{
		Filename: name,
		Kind:     kind,
		Folder:   folder,
		Path:     fullPath,
		URL:      s.URL(folder, name),
		Size:     int64(len(data)),
	}, nil
}

// StoreText stores text encoded as UTF-8.
func (s *FileStore) StoreText(ctx context.Context, text string, kind domain.ContentKind, filename string) (*domain.StoredArtifact, error) {
	return s.Store(ctx, []byte(text), kind, filename)
}

// Resolve maps a kind and filename to a filesystem path without any I/O.
func (s *FileStore) Resolve(kind domain.ContentKind, filename string) string {
	return filepath.Join(s.basePath, kind.Folder(), filename)
}

// URL builds {baseURL}/files/{folder}/{filename}.
func (s *FileStore) URL(folder, filename string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.baseURL, folder, filename)
}

// sanitizeFilename accepts a single path element only, so callers cannot write
// outside their folder.
func sanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: filename is required", domain.ErrInvalidRequest)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidRequest, name)
	}
	return name, nil
}
