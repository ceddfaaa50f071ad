package inmemory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sharetube/syncroom/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *repo {
	return NewRepo(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: "a", RoomId: "ROOM01"}))
	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: "b", RoomId: "ROOM01"}))
	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: "c", RoomId: "ROOM02"}))

	ids, err := r.GetMemberIds(ctx, "ROOM01")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	roomId, err := r.GetMemberRoomId(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "ROOM02", roomId)

	count, err := r.GetRoomsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = r.AddMember(ctx, &room.AddMemberParams{MemberId: "a", RoomId: "ROOM02"})
	assert.ErrorIs(t, err, room.ErrMemberAlreadyInRoom)
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: id, RoomId: "ROOM01"}))
	}

	roomId, err := r.RemoveMember(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", roomId)

	ids, err := r.GetMemberIds(ctx, "ROOM01")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)

	_, err = r.GetMemberRoomId(ctx, "b")
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	_, err = r.RemoveMember(ctx, "b")
	assert.ErrorIs(t, err, room.ErrMemberNotFound)
}

func TestRoomDisappearsWithLastMember(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: "a", RoomId: "ROOM01"}))
	_, err := r.RemoveMember(ctx, "a")
	require.NoError(t, err)

	ids, err := r.GetMemberIds(ctx, "ROOM01")
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := r.GetRoomsCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetMemberIdsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{MemberId: "a", RoomId: "ROOM01"}))
	ids, err := r.GetMemberIds(ctx, "ROOM01")
	require.NoError(t, err)
	ids[0] = "changed"

	ids, err = r.GetMemberIds(ctx, "ROOM01")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}
