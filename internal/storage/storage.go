// Package storage defines the external storage collaborator for uploaded
// files. The room core only handles descriptors; bytes live behind this
// interface.
package storage

import (
	"context"
	"io"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

// FileStore persists uploaded file content and reclaims it on room teardown.
type FileStore interface {
	// Store writes the content and returns the descriptor the room records.
	Store(ctx context.Context, content io.Reader, originalName string) (domain.FileInfo, error)

	// Delete releases a stored file by its storage key. Callers treat
	// failures as best-effort: log and move on, never retry.
	Delete(ctx context.Context, key string) error
}
