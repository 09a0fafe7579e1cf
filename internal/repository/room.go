package repository

import (
	"context"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

// RoomRepository is the storage contract for the live room registry.
//
// Rooms are only ever touched inside Mutate so every mutation (and every
// read of mutable state) is atomic relative to other room operations. A
// registry enforces the emptiness invariant itself: when a mutation leaves
// a room with no members, the room is removed before Mutate returns.
type RoomRepository interface {
	// Save inserts a new room. Returns ErrDuplicateEntry if the code is
	// already live.
	Save(ctx context.Context, room *domain.Room) error

	// Mutate runs fn against the room identified by code, atomically.
	// Returns ErrRoomNotFound if no such room exists, fn's error otherwise.
	// The deleted result reports whether the room emptied out and was
	// removed as a consequence of fn.
	Mutate(ctx context.Context, code string, fn func(room *domain.Room) error) (deleted bool, err error)

	// Delete removes a room unconditionally. Returns ErrRoomNotFound if the
	// code is unknown. Normal teardown happens via Mutate's reaping; Delete
	// exists for shutdown-time cleanup.
	Delete(ctx context.Context, code string) error

	// ExistsByCode reports whether a room code is currently live.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Codes returns the codes of every live room.
	Codes(ctx context.Context) ([]string, error)
}
