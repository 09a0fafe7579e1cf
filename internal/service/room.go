package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
	"github.com/Vivek-yadav01/CollabRoom/internal/repository"
	"github.com/Vivek-yadav01/CollabRoom/internal/storage"
)

const (
	roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomCodeLength   = 6
	maxCodeAttempts  = 10
)

// RoomService owns room lifecycle: creation, membership, snapshots and the
// teardown that releases uploaded files once a room empties out.
type RoomService struct {
	rooms repository.RoomRepository
	files storage.FileStore
}

// NewRoomService creates a RoomService instance.
func NewRoomService(rooms repository.RoomRepository, files storage.FileStore) *RoomService {
	if rooms == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if files == nil {
		panic("FileStore cannot be nil for RoomService")
	}
	return &RoomService{rooms: rooms, files: files}
}

// CreateRoom generates a fresh unique code, constructs an empty room with
// the creator as sole member, and returns the code.
func (s *RoomService) CreateRoom(ctx context.Context, creatorID, displayName string) (string, error) {
	logCtx := logrus.WithField("conn_id", creatorID)

	code, err := s.generateUniqueRoomCode(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate unique room code")
		return "", ErrInternalServer
	}
	logCtx = logCtx.WithField("room_code", code)

	room := domain.NewRoom(code)
	room.AddMember(creatorID, displayName)

	if err := s.rooms.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to save new room")
		return "", ErrInternalServer
	}

	logCtx.Info("Room created")
	return code, nil
}

// JoinRoom adds the connection to the room's member set, records its display
// name, and returns the full room snapshot for the joining connection only.
func (s *RoomService) JoinRoom(ctx context.Context, code, connID, displayName string) (domain.Snapshot, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "conn_id": connID})

	var snap domain.Snapshot
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		room.AddMember(connID, displayName)
		snap = room.Snapshot()
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, mapRepoError(err, logCtx, "JoinRoom")
	}

	logCtx.WithField("member_count", len(snap.Members)).Info("Connection joined room")
	return snap, nil
}

// FetchRoomData returns the room snapshot. Idempotent and side-effect-free;
// an unknown code yields ErrRoomNotFound so callers can tell "never existed"
// from "exists but empty of content".
func (s *RoomService) FetchRoomData(ctx context.Context, code string) (domain.Snapshot, error) {
	logCtx := logrus.WithField("room_code", code)

	var snap domain.Snapshot
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		snap = room.Snapshot()
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, mapRepoError(err, logCtx, "FetchRoomData")
	}
	return snap, nil
}

// Peers lists the other members of a room for peer-connection bootstrap,
// excluding the requester so only the newcomer initiates negotiation.
func (s *RoomService) Peers(ctx context.Context, code, requesterID string) ([]domain.PeerInfo, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "conn_id": requesterID})

	var peers []domain.PeerInfo
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		peers = room.Peers(requesterID)
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, logCtx, "Peers")
	}
	return peers, nil
}

// LeaveResult describes the effect of removing a connection from one room.
type LeaveResult struct {
	RoomCode string
	Deleted  bool
}

// Leave removes the connection from each of the given rooms. A room that
// empties out is deleted on the spot and its uploaded files are released
// from storage, best effort. Rooms that vanished in the meantime are
// skipped silently.
func (s *RoomService) Leave(ctx context.Context, connID string, roomCodes []string) []LeaveResult {
	logCtx := logrus.WithField("conn_id", connID)

	results := make([]LeaveResult, 0, len(roomCodes))
	for _, code := range roomCodes {
		var files []domain.FileInfo
		deleted, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
			room.RemoveMember(connID)
			files = append([]domain.FileInfo{}, room.Files...)
			return nil
		})
		if err != nil {
			if !errors.Is(err, repository.ErrRoomNotFound) {
				logCtx.WithError(err).WithField("room_code", code).Error("Leave: registry error")
			}
			continue
		}
		if deleted {
			s.releaseFiles(code, files)
		}
		results = append(results, LeaveResult{RoomCode: code, Deleted: deleted})
	}
	return results
}

// ReleaseAll tears down every surviving room, releasing its stored files.
// Called on process shutdown so the upload directory does not accumulate
// orphans from rooms that never emptied.
func (s *RoomService) ReleaseAll(ctx context.Context) {
	codes, err := s.rooms.Codes(ctx)
	if err != nil {
		logrus.WithError(err).Error("ReleaseAll: failed to enumerate rooms")
		return
	}
	for _, code := range codes {
		logCtx := logrus.WithField("room_code", code)

		var files []domain.FileInfo
		if _, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
			files = append([]domain.FileInfo{}, room.Files...)
			return nil
		}); err != nil {
			continue
		}
		if err := s.rooms.Delete(ctx, code); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.WithError(err).Error("ReleaseAll: failed to delete room")
			continue
		}
		for _, f := range files {
			if err := s.files.Delete(ctx, f.Filename); err != nil {
				logCtx.WithError(err).WithField("file", f.Filename).Warn("ReleaseAll: failed to release stored file")
			}
		}
		logCtx.WithField("file_count", len(files)).Info("Room released on shutdown")
	}
}

// releaseFiles asks the storage collaborator to reclaim every file a dead
// room owned. Runs off the caller's goroutine: teardown must not block the
// event loop, and failures are logged, never retried.
func (s *RoomService) releaseFiles(code string, files []domain.FileInfo) {
	if len(files) == 0 {
		return
	}
	go func() {
		ctx := context.Background()
		logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "file_count": len(files)})
		for _, f := range files {
			if err := s.files.Delete(ctx, f.Filename); err != nil {
				logCtx.WithError(err).WithField("file", f.Filename).Warn("Failed to release stored file")
			}
		}
		logCtx.Info("Released files of deleted room")
	}()
}

// generateUniqueRoomCode draws 6-character codes from crypto/rand until one
// is free. Collisions in a base-36 space are unlikely but not impossible,
// so the code is checked against the registry and regenerated on conflict.
func (s *RoomService) generateUniqueRoomCode(ctx context.Context) (string, error) {
	b := make([]byte, roomCodeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
		}
		code := string(b)

		exists, err := s.rooms.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("registry error checking room code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithField("room_code", code).Warnf("Generated room code already exists, retrying (attempt %d)", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxCodeAttempts)
}
