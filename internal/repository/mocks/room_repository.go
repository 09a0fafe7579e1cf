// Package mocks holds testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

// RoomRepository is a mock implementation of repository.RoomRepository.
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) Mutate(ctx context.Context, code string, fn func(room *domain.Room) error) (bool, error) {
	args := m.Called(ctx, code, fn)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *RoomRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) Codes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}
