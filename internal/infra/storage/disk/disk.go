// Package disk implements the file store over a local directory, served to
// clients under the /uploads path prefix.
package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

const publicPrefix = "/uploads"

// Store writes uploaded files into a single flat directory, keyed by a
// fresh uuid plus the original extension.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory, for static-file serving.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Store(ctx context.Context, content io.Reader, originalName string) (domain.FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	key := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return domain.FileInfo{}, fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		os.Remove(dst.Name())
		return domain.FileInfo{}, fmt.Errorf("write stored file: %w", err)
	}

	return domain.FileInfo{
		Filename:     key,
		OriginalName: originalName,
		Path:         path.Join(publicPrefix, key),
		Type:         ext,
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	// Keys are server-generated, but never let a path escape the directory.
	key = filepath.Base(key)
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil {
		return fmt.Errorf("remove stored file %q: %w", key, err)
	}
	return nil
}
