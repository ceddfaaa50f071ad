package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/roomcode"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

const (
	roomNotFoundMessage = "Room does not exist"
	noRoomMessage       = "No room to leave"
)

type EmptyInput struct{}

type errorResult struct {
	Error *string `json:"error"`
}

type usernameResult struct {
	Error    *string `json:"error"`
	Username string  `json:"username"`
}

type roomResult struct {
	Error  *string `json:"error"`
	RoomID *string `json:"roomID"`
}

func ptr[T any](v T) *T {
	return &v
}

type ChangeUsernameInput struct {
	Username string `json:"username"`
}

func (c controller) handleChangeUsername(ctx context.Context, _ wsrouter.Conn, input ChangeUsernameInput) (any, error) {
	if err := c.roomService.ChangeUsername(ctx, &room.ChangeUsernameParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		Username: input.Username,
	}); err != nil {
		return nil, fmt.Errorf("failed to change username: %w", err)
	}

	return errorResult{}, nil
}

func (c controller) handleGetUsername(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	username, err := c.roomService.GetUsername(ctx, c.getConnIdFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get username: %w", err)
	}

	return usernameResult{Username: username}, nil
}

func (c controller) handleCreateRoom(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	resp, err := c.roomService.CreateRoom(ctx, c.getConnIdFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return roomResult{RoomID: &resp.RoomId}, nil
}

type JoinRoomInput struct {
	RoomID string `json:"roomID" validate:"required,max=32"`
}

func (c controller) handleJoinRoom(ctx context.Context, _ wsrouter.Conn, input JoinRoomInput) (any, error) {
	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: roomcode.Normalize(input.RoomID),
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return roomResult{Error: ptr(roomNotFoundMessage)}, nil
		}

		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	return roomResult{RoomID: &resp.RoomId}, nil
}

func (c controller) handleLeaveRoom(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	if err := c.roomService.LeaveRoom(ctx, c.getConnIdFromCtx(ctx)); err != nil {
		if errors.Is(err, room.ErrNoRoom) {
			return errorResult{Error: ptr(noRoomMessage)}, nil
		}

		return nil, fmt.Errorf("failed to leave room: %w", err)
	}

	return errorResult{}, nil
}

func (c controller) handleGetCurrentRoom(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	roomId, err := c.roomService.GetCurrentRoom(ctx, c.getConnIdFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get current room: %w", err)
	}

	// The ack payload is the bare code, or null outside a room.
	if roomId == "" {
		return (*string)(nil), nil
	}

	return roomId, nil
}

func (c controller) handlePlay(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	if err := c.roomService.Play(ctx, c.getConnIdFromCtx(ctx)); err != nil {
		return nil, fmt.Errorf("failed to play: %w", err)
	}

	return nil, nil
}

func (c controller) handlePause(ctx context.Context, _ wsrouter.Conn, _ EmptyInput) (any, error) {
	if err := c.roomService.Pause(ctx, c.getConnIdFromCtx(ctx)); err != nil {
		return nil, fmt.Errorf("failed to pause: %w", err)
	}

	return nil, nil
}

type SyncInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleSync(ctx context.Context, _ wsrouter.Conn, input SyncInput) (any, error) {
	if err := c.roomService.Sync(ctx, &room.SyncParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Time:   input.Time,
	}); err != nil {
		return nil, fmt.Errorf("failed to sync: %w", err)
	}

	return nil, nil
}

type CurrentlyWatchingInput struct {
	MediaID string  `json:"mediaID" validate:"max=256"`
	Time    float64 `json:"time"`
}

func (c controller) handleCurrentlyWatching(ctx context.Context, _ wsrouter.Conn, input CurrentlyWatchingInput) (any, error) {
	if err := c.roomService.ReportWatching(ctx, &room.ReportWatchingParams{
		ConnId:  c.getConnIdFromCtx(ctx),
		MediaId: input.MediaID,
		Time:    input.Time,
	}); err != nil {
		return nil, fmt.Errorf("failed to report watching: %w", err)
	}

	return nil, nil
}

type LatencyProbeInput struct {
	Seq int64 `json:"seq" validate:"gte=1"`
}

func (c controller) handleLatencyProbe(ctx context.Context, _ wsrouter.Conn, input LatencyProbeInput) (any, error) {
	if err := c.roomService.ProbeReply(ctx, &room.ProbeReplyParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Seq:    input.Seq,
	}); err != nil {
		return nil, fmt.Errorf("failed to handle probe reply: %w", err)
	}

	return nil, nil
}
