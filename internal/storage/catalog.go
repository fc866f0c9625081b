package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/pkg/zip"
)

// MaxNotFoundSample caps the example identifiers returned with a NotFoundError.
const MaxNotFoundSample = 10

// Catalog groups stored files by folder. Entries keep directory enumeration
// order; callers must not rely on any sorting.
type Catalog map[string][]domain.CatalogEntry

// NotFoundError is returned by ResolveOne when the requested file is absent.
type NotFoundError struct {
	RequestedPath string
	Available     []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.RequestedPath)
}

func (e *NotFoundError) Is(target error) bool { return target == domain.ErrNotFound }

// Info reports the state of the storage root for debugging.
type Info struct {
	Path        string   `json:"LOCAL_STORAGE_PATH"`
	BaseURL     string   `json:"BASE_URL"`
	Exists      bool     `json:"storage_exists"`
	IsDir       bool     `json:"storage_is_dir"`
	Permissions string   `json:"storage_permissions"`
	Folders     []string `json:"folders"`
}

// ListAll walks every folder directly below the root and lists its regular
// files. Nested directories are skipped, not descended into. A missing root
// yields an error matching domain.ErrNotFound.
func (s *FileStore) ListAll() (Catalog, error) {
	folders, err := s.folders()
	if err != nil {
		return nil, err
	}
	catalog := make(Catalog, len(folders))
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(s.basePath, folder))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", folder, err)
		}
		files := make([]domain.CatalogEntry, 0, len(entries))
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, domain.CatalogEntry{
				Name:      entry.Name(),
				Size:      info.Size(),
				URL:       s.URL(folder, entry.Name()),
				CreatedAt: info.ModTime(),
			})
		}
		catalog[folder] = files
	}
	return catalog, nil
}

// ResolveOne returns the path of an existing regular file, or a *NotFoundError
// listing up to MaxNotFoundSample existing "{folder}/{name}" identifiers.
func (s *FileStore) ResolveOne(kind domain.ContentKind, filename string) (string, error) {
	path := s.Resolve(kind, filename)
	if _, err := sanitizeFilename(filename); err == nil {
		info, statErr := os.Stat(path)
		if statErr == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", &NotFoundError{RequestedPath: path, Available: s.sample(MaxNotFoundSample)}
}

// Inspect reports whether the root exists, its permissions and its folders.
func (s *FileStore) Inspect() Info {
	info := Info{
		Path:        s.basePath,
		BaseURL:     s.baseURL,
		Permissions: "N/A",
		Folders:     []string{},
	}
	stat, err := os.Stat(s.basePath)
	if err != nil {
		return info
	}
	info.Exists = true
	info.IsDir = stat.IsDir()
	info.Permissions = fmt.Sprintf("%03o", stat.Mode().Perm())
	if folders, err := s.folders(); err == nil {
		info.Folders = folders
	}
	return info
}

// Archive zips the regular files of one content folder.
func (s *FileStore) Archive(ctx context.Context, kind domain.ContentKind) ([]byte, error) {
	folder := kind.Folder()
	dir := filepath.Join(s.basePath, folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: folder %s: %w", folder, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", folder, err)
	}
	var files []zip.Entry
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s/%s: %w", folder, entry.Name(), err)
		}
		files = append(files, zip.Entry{
			Name:     folder + "/" + entry.Name(),
			Modified: info.ModTime(),
			Data:     data,
		})
	}
	return zip.Archive(files)
}

func (s *FileStore) folders() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: root %s: %w", s.basePath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read root: %w", err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	return folders, nil
}

func (s *FileStore) sample(limit int) []string {
	out := []string{}
	folders, err := s.folders()
	if err != nil {
		return out
	}
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(s.basePath, folder))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			out = append(out, folder+"/"+entry.Name())
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}
