package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/connection"
)

// broadcastPresence sends the ordered presence list of roomId to all of its members.
func (s *service) broadcastPresence(ctx context.Context, roomId string) {
	if roomId == "" {
		return
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get member ids", "room_id", roomId, "error", err)
		return
	}

	if len(memberIds) == 0 {
		return
	}

	presences := make([]domain.Presence, 0, len(memberIds))
	for _, memberId := range memberIds {
		presence, err := s.connRepo.Get(memberId)
		if err != nil {
			s.logger.WarnContext(ctx, "member without presence", "room_id", roomId, "conn_id", memberId, "error", err)
			continue
		}

		presences = append(presences, presence)
	}

	msg := Message{
		Type:    MessageTypeUserList,
		Payload: presences,
	}
	for _, memberId := range memberIds {
		s.send(ctx, memberId, &msg)
	}
}

func (s *service) Connect(ctx context.Context, connId string) (domain.Presence, error) {
	var (
		presence domain.Presence
		err      error
	)
	if execErr := s.exec(ctx, func() {
		presence, err = s.connRepo.Register(connId)
		if err != nil {
			return
		}

		s.startProbe(connId)
	}); execErr != nil {
		return domain.Presence{}, execErr
	}

	if err != nil {
		return domain.Presence{}, fmt.Errorf("failed to register connection: %w", err)
	}

	s.logger.InfoContext(ctx, "connected", "conn_id", connId, "name", presence.Name)
	return presence, nil
}

// Disconnect applies leave semantics, drops the presence record and stops the probe of connId.
func (s *service) Disconnect(ctx context.Context, connId string) error {
	var err error
	if execErr := s.exec(ctx, func() {
		s.stopProbe(connId)

		if _, err = s.leave(ctx, connId); err != nil {
			s.logger.ErrorContext(ctx, "failed to leave room on disconnect", "conn_id", connId, "error", err)
		}

		if removeErr := s.connRepo.Remove(connId); removeErr != nil {
			if errors.Is(removeErr, connection.ErrNotFound) {
				err = ErrConnNotFound
				return
			}

			err = removeErr
		}
	}); execErr != nil {
		return execErr
	}

	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "disconnected", "conn_id", connId)
	return nil
}

type ChangeUsernameParams struct {
	ConnId   string
	Username string
}

func (s *service) ChangeUsername(ctx context.Context, params *ChangeUsernameParams) error {
	var err error
	if execErr := s.exec(ctx, func() {
		if err = s.connRepo.Update(params.ConnId, &domain.PresencePatch{Name: &params.Username}); err != nil {
			return
		}

		var roomId string
		if roomId, err = s.currentRoom(ctx, params.ConnId); err != nil {
			return
		}

		s.broadcastPresence(ctx, roomId)
	}); execErr != nil {
		return execErr
	}

	return mapConnErr(err)
}

func (s *service) GetUsername(ctx context.Context, connId string) (string, error) {
	var (
		presence domain.Presence
		err      error
	)
	if execErr := s.exec(ctx, func() {
		presence, err = s.connRepo.Get(connId)
	}); execErr != nil {
		return "", execErr
	}

	if err != nil {
		return "", mapConnErr(err)
	}

	return presence.Name, nil
}

func mapConnErr(err error) error {
	if errors.Is(err, connection.ErrNotFound) {
		return ErrConnNotFound
	}

	return err
}
