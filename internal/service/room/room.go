package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room"
)

// Attempts at generating a code that is not held by an active room.
const maxCodeAttempts = 16

// currentRoom returns the room of connId or "" when it is not in one.
func (s *service) currentRoom(ctx context.Context, connId string) (string, error) {
	roomId, err := s.roomRepo.GetMemberRoomId(ctx, connId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("failed to get member room: %w", err)
	}

	return roomId, nil
}

// leave removes connId from its room and broadcasts the vacated room.
// It returns the left room or "" when connId was not in one.
func (s *service) leave(ctx context.Context, connId string) (string, error) {
	roomId, err := s.roomRepo.RemoveMember(ctx, connId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("failed to remove member: %w", err)
	}

	s.logger.InfoContext(ctx, "left room", "conn_id", connId, "room_id", roomId)
	s.broadcastPresence(ctx, roomId)

	return roomId, nil
}

func (s *service) join(ctx context.Context, connId, roomId string) error {
	if err := s.roomRepo.AddMember(ctx, &room.AddMemberParams{
		MemberId: connId,
		RoomId:   roomId,
	}); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.InfoContext(ctx, "joined room", "conn_id", connId, "room_id", roomId)
	s.broadcastPresence(ctx, roomId)

	return nil
}

func (s *service) generateRoomId(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		roomId, err := s.codeGenerator.Generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}

		memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
		if err != nil {
			return "", fmt.Errorf("failed to get member ids: %w", err)
		}

		if len(memberIds) == 0 {
			return roomId, nil
		}

		s.logger.DebugContext(ctx, "room code collision", "room_id", roomId)
	}

	return "", ErrCodeSpaceExhausted
}

func (s *service) GetCurrentRoom(ctx context.Context, connId string) (string, error) {
	var (
		roomId string
		err    error
	)
	if execErr := s.exec(ctx, func() {
		roomId, err = s.currentRoom(ctx, connId)
	}); execErr != nil {
		return "", execErr
	}

	return roomId, err
}

type CreateRoomResponse struct {
	RoomId string
}

// CreateRoom moves connId into a freshly coded room.
func (s *service) CreateRoom(ctx context.Context, connId string) (CreateRoomResponse, error) {
	var (
		roomId string
		err    error
	)
	if execErr := s.exec(ctx, func() {
		if _, err = s.connRepo.Get(connId); err != nil {
			err = mapConnErr(err)
			return
		}

		if _, err = s.leave(ctx, connId); err != nil {
			return
		}

		if roomId, err = s.generateRoomId(ctx); err != nil {
			return
		}

		err = s.join(ctx, connId, roomId)
	}); execErr != nil {
		return CreateRoomResponse{}, execErr
	}

	if err != nil {
		return CreateRoomResponse{}, err
	}

	return CreateRoomResponse{
		RoomId: roomId,
	}, nil
}

type JoinRoomParams struct {
	ConnId string
	RoomId string
}

type JoinRoomResponse struct {
	RoomId string
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	var err error
	if execErr := s.exec(ctx, func() {
		if _, err = s.connRepo.Get(params.ConnId); err != nil {
			err = mapConnErr(err)
			return
		}

		var memberIds []string
		if memberIds, err = s.roomRepo.GetMemberIds(ctx, params.RoomId); err != nil {
			err = fmt.Errorf("failed to get member ids: %w", err)
			return
		}

		if len(memberIds) == 0 {
			err = ErrRoomNotFound
			return
		}

		var current string
		if current, err = s.currentRoom(ctx, params.ConnId); err != nil {
			return
		}

		if current == params.RoomId {
			s.broadcastPresence(ctx, current)
			return
		}

		if _, err = s.leave(ctx, params.ConnId); err != nil {
			return
		}

		err = s.join(ctx, params.ConnId, params.RoomId)
	}); execErr != nil {
		return JoinRoomResponse{}, execErr
	}

	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		RoomId: params.RoomId,
	}, nil
}

func (s *service) LeaveRoom(ctx context.Context, connId string) error {
	var (
		roomId string
		err    error
	)
	if execErr := s.exec(ctx, func() {
		roomId, err = s.leave(ctx, connId)
	}); execErr != nil {
		return execErr
	}

	if err != nil {
		return err
	}

	if roomId == "" {
		return ErrNoRoom
	}

	return nil
}

// GetRoomMembers returns the presence list of roomId in join order.
func (s *service) GetRoomMembers(ctx context.Context, roomId string) ([]domain.Presence, error) {
	var (
		presences []domain.Presence
		err       error
	)
	if execErr := s.exec(ctx, func() {
		var memberIds []string
		if memberIds, err = s.roomRepo.GetMemberIds(ctx, roomId); err != nil {
			err = fmt.Errorf("failed to get member ids: %w", err)
			return
		}

		for _, memberId := range memberIds {
			presence, getErr := s.connRepo.Get(memberId)
			if getErr != nil {
				continue
			}

			presences = append(presences, presence)
		}
	}); execErr != nil {
		return nil, execErr
	}

	if err != nil {
		return nil, err
	}

	if len(presences) == 0 {
		return nil, ErrRoomNotFound
	}

	return presences, nil
}
