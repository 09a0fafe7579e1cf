// Package mocks holds testify mocks for the storage interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

// FileStore is a mock implementation of storage.FileStore.
type FileStore struct {
	mock.Mock
}

func (m *FileStore) Store(ctx context.Context, content io.Reader, originalName string) (domain.FileInfo, error) {
	args := m.Called(ctx, content, originalName)
	return args.Get(0).(domain.FileInfo), args.Error(1)
}

func (m *FileStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
