// Package memory holds the in-memory implementation of the room registry.
// Rooms are ephemeral by design: they live exactly as long as their member
// set is non-empty and never survive a process restart.
package memory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
	"github.com/Vivek-yadav01/CollabRoom/internal/repository"
)

// Registry implements repository.RoomRepository over a plain map. The write
// lock spans every Mutate call, so a mutation function runs as a critical
// section relative to all other room operations.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

// NewRegistry creates an empty registry. Tests construct independent
// registries; the process constructs exactly one in bootstrap.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*domain.Room)}
}

func (r *Registry) Save(ctx context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[room.Code]; exists {
		return repository.ErrDuplicateEntry
	}
	r.rooms[room.Code] = room
	return nil
}

func (r *Registry) Mutate(ctx context.Context, code string, fn func(room *domain.Room) error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return false, repository.ErrRoomNotFound
	}
	if err := fn(room); err != nil {
		return false, err
	}
	// Emptiness invariant: no empty room outlives the mutation that
	// emptied it.
	if room.Empty() {
		delete(r.rooms, code)
		logrus.WithFields(logrus.Fields{
			"component": "registry",
			"room_code": code,
		}).Info("Room emptied, removed from registry")
		return true, nil
	}
	return false, nil
}

func (r *Registry) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(r.rooms, code)
	return nil
}

func (r *Registry) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok, nil
}

func (r *Registry) Codes(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	return codes, nil
}
