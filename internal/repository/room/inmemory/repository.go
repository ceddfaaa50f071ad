package inmemory

import (
	"context"
	"log/slog"

	"github.com/sharetube/syncroom/internal/repository/room"
	"golang.org/x/exp/slices"
)

// repo maps connections to room codes. A room exists while its member list is not empty.
// Not safe for concurrent use.
type repo struct {
	memberRoom map[string]string
	rooms      map[string][]string
	logger     *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		memberRoom: make(map[string]string),
		rooms:      make(map[string][]string),
		logger:     logger,
	}
}

func (r *repo) AddMember(ctx context.Context, params *room.AddMemberParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if roomId, ok := r.memberRoom[params.MemberId]; ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberAlreadyInRoom, "room_id", roomId)
		return room.ErrMemberAlreadyInRoom
	}

	r.memberRoom[params.MemberId] = params.RoomId
	r.rooms[params.RoomId] = append(r.rooms[params.RoomId], params.MemberId)

	return nil
}

// RemoveMember drops the membership of memberId and returns the room it belonged to.
func (r *repo) RemoveMember(ctx context.Context, memberId string) (string, error) {
	r.logger.DebugContext(ctx, "called", "member_id", memberId)
	roomId, ok := r.memberRoom[memberId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberNotFound)
		return "", room.ErrMemberNotFound
	}

	delete(r.memberRoom, memberId)
	members := r.rooms[roomId]
	if i := slices.Index(members, memberId); i >= 0 {
		members = slices.Delete(members, i, i+1)
	}

	if len(members) == 0 {
		delete(r.rooms, roomId)
	} else {
		r.rooms[roomId] = members
	}

	r.logger.DebugContext(ctx, "returned", "room_id", roomId)
	return roomId, nil
}

func (r *repo) GetMemberRoomId(ctx context.Context, memberId string) (string, error) {
	roomId, ok := r.memberRoom[memberId]
	if !ok {
		return "", room.ErrMemberNotFound
	}

	return roomId, nil
}

// GetMemberIds returns members of roomId in join order.
func (r *repo) GetMemberIds(ctx context.Context, roomId string) ([]string, error) {
	return slices.Clone(r.rooms[roomId]), nil
}

func (r *repo) GetRoomsCount(ctx context.Context) (int, error) {
	return len(r.rooms), nil
}
