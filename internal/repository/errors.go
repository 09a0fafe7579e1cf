package repository

import "errors"

var (
	// ErrRoomNotFound is returned when no live room exists for a code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrDuplicateEntry is returned when saving a room whose code is taken.
	ErrDuplicateEntry = errors.New("duplicate entry")
)
