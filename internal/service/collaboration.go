package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
	"github.com/Vivek-yadav01/CollabRoom/internal/repository"
	"github.com/Vivek-yadav01/CollabRoom/internal/storage"
)

// CollaborationService applies the per-event-type merge rules to a room's
// event log: chat, documents, the active-document cursor, whiteboard strokes
// and uploaded-file records. Each mutation is atomic relative to every other
// mutation on the same room.
type CollaborationService struct {
	rooms repository.RoomRepository
	files storage.FileStore
}

// NewCollaborationService creates a CollaborationService instance.
func NewCollaborationService(rooms repository.RoomRepository, files storage.FileStore) *CollaborationService {
	if rooms == nil {
		panic("RoomRepository cannot be nil for CollaborationService")
	}
	if files == nil {
		panic("FileStore cannot be nil for CollaborationService")
	}
	return &CollaborationService{rooms: rooms, files: files}
}

// AppendChat appends a chat message with a server-assigned timestamp and
// returns the stored entry for fan-out.
func (s *CollaborationService) AppendChat(ctx context.Context, code, senderID, senderName, text string) (domain.ChatMessage, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "conn_id": senderID})

	var msg domain.ChatMessage
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		msg = room.AppendChat(senderID, senderName, text)
		return nil
	})
	if err != nil {
		return domain.ChatMessage{}, mapRepoError(err, logCtx, "AppendChat")
	}
	return msg, nil
}

// CreateDocument stores a document, renaming it on name collision, and
// returns the canonical stored name so the creator converges on it too.
func (s *CollaborationService) CreateDocument(ctx context.Context, code, docName, content string) (string, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "doc_name": docName})

	var stored string
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		stored = room.PutDocument(docName, content)
		return nil
	})
	if err != nil {
		return "", mapRepoError(err, logCtx, "CreateDocument")
	}
	if stored != docName {
		logCtx.WithField("stored_name", stored).Info("Document renamed on collision")
	}
	return stored, nil
}

// UpdateDocument overwrites a document by name.
func (s *CollaborationService) UpdateDocument(ctx context.Context, code, docName, content string) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "doc_name": docName})

	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		room.UpdateDocument(docName, content)
		return nil
	})
	if err != nil {
		return mapRepoError(err, logCtx, "UpdateDocument")
	}
	return nil
}

// ChangePage overwrites the active-document cursor wholesale.
func (s *CollaborationService) ChangePage(ctx context.Context, code, filename string, page int) (domain.ActiveDocument, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "filename": filename, "page": page})

	var active domain.ActiveDocument
	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		active = room.SetActiveDocument(filename, page)
		return nil
	})
	if err != nil {
		return domain.ActiveDocument{}, mapRepoError(err, logCtx, "ChangePage")
	}
	return active, nil
}

// ChangeFile switches the active document, resetting the page to 1.
func (s *CollaborationService) ChangeFile(ctx context.Context, code, filename string) (domain.ActiveDocument, error) {
	return s.ChangePage(ctx, code, filename, 1)
}

// MergeStroke folds an incoming stroke into the room's replay log. The raw
// stroke, not the merged log, is what gets broadcast; the log exists to
// serve late joiners through snapshots.
func (s *CollaborationService) MergeStroke(ctx context.Context, code string, stroke []domain.StrokePoint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "point_count": len(stroke)})

	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		room.MergeStroke(stroke)
		return nil
	})
	if err != nil {
		return mapRepoError(err, logCtx, "MergeStroke")
	}
	return nil
}

// AttachFile records an uploaded file against a room. The upload awaited a
// round trip to external storage, so the room may have been deleted by a
// disconnect that raced the transfer; in that case the operation is a
// logged no-op, the orphaned file is reclaimed, and ErrRoomNotFound lets
// the upload handler answer 404 without resurrecting the room.
func (s *CollaborationService) AttachFile(ctx context.Context, code string, info domain.FileInfo) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "file": info.Filename})

	_, err := s.rooms.Mutate(ctx, code, func(room *domain.Room) error {
		room.AppendFile(info)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("Room vanished during upload, reclaiming stored file")
			if derr := s.files.Delete(ctx, info.Filename); derr != nil {
				logCtx.WithError(derr).Warn("Failed to reclaim orphaned upload")
			}
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("AttachFile: registry error")
		return ErrInternalServer
	}

	logCtx.Info("File attached to room")
	return nil
}
