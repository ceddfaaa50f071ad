package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/syncroom/internal/repository/room"
)

const memberListSuffix = ":memberlist"

func (r repo) getMemberKey(memberId string) string {
	return r.prefix + "member:" + memberId
}

func (r repo) getRoomKeyPrefix() string {
	return r.prefix + "room:"
}

func (r repo) getMemberListKey(roomId string) string {
	return r.getRoomKeyPrefix() + roomId + memberListSuffix
}

func (r repo) AddMember(ctx context.Context, params *room.AddMemberParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	added, err := r.addMemberScript.Run(ctx, r.rc,
		[]string{r.getMemberKey(params.MemberId), r.getMemberListKey(params.RoomId)},
		params.MemberId, params.RoomId, r.ttlMillis(),
	).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to add member: %w", err)
	}

	if added == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberAlreadyInRoom)
		return room.ErrMemberAlreadyInRoom
	}

	return nil
}

func (r repo) RemoveMember(ctx context.Context, memberId string) (string, error) {
	r.logger.DebugContext(ctx, "called", "member_id", memberId)
	roomId, err := r.removeMemberScript.Run(ctx, r.rc,
		[]string{r.getMemberKey(memberId)},
		r.getRoomKeyPrefix(), memberListSuffix, memberId,
	).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberNotFound)
			return "", room.ErrMemberNotFound
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", fmt.Errorf("failed to remove member: %w", err)
	}

	r.logger.DebugContext(ctx, "returned", "room_id", roomId)
	return roomId, nil
}

func (r repo) GetMemberRoomId(ctx context.Context, memberId string) (string, error) {
	r.logger.DebugContext(ctx, "called", "member_id", memberId)
	roomId, err := r.touchMemberScript.Run(ctx, r.rc,
		[]string{r.getMemberKey(memberId)},
		r.getRoomKeyPrefix(), memberListSuffix, r.ttlMillis(),
	).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrMemberNotFound)
			return "", room.ErrMemberNotFound
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", fmt.Errorf("failed to get member room: %w", err)
	}

	return roomId, nil
}

func (r repo) GetMemberIds(ctx context.Context, roomId string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	memberListKey := r.getMemberListKey(roomId)
	memberIds, err := r.rc.ZRange(ctx, memberListKey, 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	if len(memberIds) > 0 {
		if err := r.rc.Expire(ctx, memberListKey, r.expireDuration).Err(); err != nil {
			r.logger.DebugContext(ctx, "failed to refresh member list ttl", "room_id", roomId, "error", err)
		}
	}

	return memberIds, nil
}

func (r repo) GetRoomsCount(ctx context.Context) (int, error) {
	r.logger.DebugContext(ctx, "called")
	keys, err := r.scanKeys(ctx, r.getRoomKeyPrefix()+"*"+memberListSuffix)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, err
	}

	return len(keys), nil
}
