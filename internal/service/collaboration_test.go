package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
	"github.com/Vivek-yadav01/CollabRoom/internal/infra/persistence/memory"
	"github.com/Vivek-yadav01/CollabRoom/internal/service"
)

func newCollabFixture(t *testing.T) (*service.CollaborationService, *service.RoomService, string, *recordingFileStore) {
	t.Helper()
	reg := memory.NewRegistry()
	store := &recordingFileStore{}
	rooms := service.NewRoomService(reg, store)
	collab := service.NewCollaborationService(reg, store)

	code, err := rooms.CreateRoom(context.Background(), "conn-1", "Alice")
	require.NoError(t, err)
	return collab, rooms, code, store
}

func TestCollaborationService_AppendChat(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	msg, err := collab.AppendChat(ctx, code, "conn-1", "Alice", "hello room")
	require.NoError(t, err)
	assert.Equal(t, "conn-1", msg.SenderID)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, "hello room", msg.Text)
	assert.NotZero(t, msg.Timestamp)

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	require.Len(t, snap.Chat, 1)
	assert.Equal(t, msg, snap.Chat[0])
}

func TestCollaborationService_AppendChat_NotFound(t *testing.T) {
	collab, _, _, _ := newCollabFixture(t)

	_, err := collab.AppendChat(context.Background(), "NOPE42", "conn-1", "Alice", "hi")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestCollaborationService_CreateDocument_RenamesOnCollision(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	first, err := collab.CreateDocument(ctx, code, "notes.txt", "one")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", first)

	second, err := collab.CreateDocument(ctx, code, "notes.txt", "two")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "one", snap.Documents[first])
	assert.Equal(t, "two", snap.Documents[second])
}

func TestCollaborationService_UpdateDocument(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	_, err := collab.CreateDocument(ctx, code, "notes.txt", "draft")
	require.NoError(t, err)
	require.NoError(t, collab.UpdateDocument(ctx, code, "notes.txt", "final"))

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "final", snap.Documents["notes.txt"])
}

func TestCollaborationService_ChangePageAndFile(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	active, err := collab.ChangePage(ctx, code, "slides.pdf", 7)
	require.NoError(t, err)
	require.NotNil(t, active.Filename)
	assert.Equal(t, "slides.pdf", *active.Filename)
	assert.Equal(t, 7, active.Page)

	// Switching files resets the page cursor.
	active, err = collab.ChangeFile(ctx, code, "handout.pdf")
	require.NoError(t, err)
	assert.Equal(t, "handout.pdf", *active.Filename)
	assert.Equal(t, 1, active.Page)

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, active, snap.ActiveDocument)
}

func TestCollaborationService_MergeStroke(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	stroke := []domain.StrokePoint{{X: 1, Y: 2}, {X: 3, Y: 4}}
	require.NoError(t, collab.MergeStroke(ctx, code, stroke))

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	require.Len(t, snap.Strokes, 3)
	assert.True(t, snap.Strokes[0].IsBreak())
	assert.Equal(t, stroke[0], snap.Strokes[1])
}

func TestCollaborationService_AttachFile(t *testing.T) {
	collab, rooms, code, _ := newCollabFixture(t)
	ctx := context.Background()

	info := domain.FileInfo{Filename: "key-a.pdf", OriginalName: "a.pdf", Path: "/uploads/key-a.pdf", Type: ".pdf"}
	require.NoError(t, collab.AttachFile(ctx, code, info))

	snap, err := rooms.FetchRoomData(ctx, code)
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, info, snap.Files[0])
}

func TestCollaborationService_AttachFile_RoomVanishedReclaimsUpload(t *testing.T) {
	collab, _, _, store := newCollabFixture(t)

	info := domain.FileInfo{Filename: "key-orphan.png"}
	err := collab.AttachFile(context.Background(), "NOPE42", info)
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
	assert.Equal(t, []string{"key-orphan.png"}, store.Deleted())
}
