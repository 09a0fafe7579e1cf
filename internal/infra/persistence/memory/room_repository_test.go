package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
	"github.com/Vivek-yadav01/CollabRoom/internal/infra/persistence/memory"
	"github.com/Vivek-yadav01/CollabRoom/internal/repository"
)

func newRoomWithMember(code, connID string) *domain.Room {
	room := domain.NewRoom(code)
	room.AddMember(connID, "")
	return room
}

func TestRegistry_SaveAndExists(t *testing.T) {
	reg := memory.NewRegistry()
	ctx := context.Background()

	exists, err := reg.ExistsByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, reg.Save(ctx, newRoomWithMember("ABC123", "conn-1")))

	exists, err = reg.ExistsByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	err = reg.Save(ctx, newRoomWithMember("ABC123", "conn-2"))
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
}

func TestRegistry_MutateUnknownRoom(t *testing.T) {
	reg := memory.NewRegistry()

	deleted, err := reg.Mutate(context.Background(), "NOPE42", func(room *domain.Room) error {
		t.Fatal("mutation function must not run for an unknown room")
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
	assert.False(t, deleted)
}

func TestRegistry_MutateReapsEmptiedRoom(t *testing.T) {
	reg := memory.NewRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Save(ctx, newRoomWithMember("ABC123", "conn-1")))

	deleted, err := reg.Mutate(ctx, "ABC123", func(room *domain.Room) error {
		room.RemoveMember("conn-1")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deleted, "room emptied by the mutation should be reaped")

	// No empty room survives the mutation that emptied it.
	exists, err := reg.ExistsByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegistry_MutateKeepsPopulatedRoom(t *testing.T) {
	reg := memory.NewRegistry()
	ctx := context.Background()
	room := newRoomWithMember("ABC123", "conn-1")
	room.AddMember("conn-2", "Bob")
	require.NoError(t, reg.Save(ctx, room))

	deleted, err := reg.Mutate(ctx, "ABC123", func(room *domain.Room) error {
		room.RemoveMember("conn-1")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, _ := reg.ExistsByCode(ctx, "ABC123")
	assert.True(t, exists)
}

func TestRegistry_DeleteAndCodes(t *testing.T) {
	reg := memory.NewRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Save(ctx, newRoomWithMember("AAAAAA", "c1")))
	require.NoError(t, reg.Save(ctx, newRoomWithMember("BBBBBB", "c2")))

	codes, err := reg.Codes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAAAAA", "BBBBBB"}, codes)

	require.NoError(t, reg.Delete(ctx, "AAAAAA"))
	assert.ErrorIs(t, reg.Delete(ctx, "AAAAAA"), repository.ErrRoomNotFound)

	codes, err = reg.Codes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBBBB"}, codes)
}
