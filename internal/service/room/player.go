package room

import (
	"context"

	"github.com/sharetube/syncroom/internal/domain"
)

// relay sends msg to the room of senderId, sender included. Senders outside a room are ignored.
func (s *service) relay(ctx context.Context, senderId string, msg *Message) error {
	return s.exec(ctx, func() {
		roomId, err := s.currentRoom(ctx, senderId)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to get current room", "conn_id", senderId, "error", err)
			return
		}

		if roomId == "" {
			s.logger.DebugContext(ctx, "relay without room", "conn_id", senderId, "type", msg.Type)
			return
		}

		s.broadcast(ctx, roomId, msg)
	})
}

func (s *service) Play(ctx context.Context, connId string) error {
	return s.relay(ctx, connId, &Message{Type: MessageTypePlay})
}

func (s *service) Pause(ctx context.Context, connId string) error {
	return s.relay(ctx, connId, &Message{Type: MessageTypePause})
}

type SyncParams struct {
	ConnId string
	Time   float64
}

func (s *service) Sync(ctx context.Context, params *SyncParams) error {
	return s.relay(ctx, params.ConnId, &Message{
		Type:    MessageTypeSync,
		Payload: SyncPayload{Time: params.Time},
	})
}

type ReportWatchingParams struct {
	ConnId  string
	MediaId string
	Time    float64
}

// ReportWatching records what the sender is watching. Nothing is broadcast.
func (s *service) ReportWatching(ctx context.Context, params *ReportWatchingParams) error {
	return s.exec(ctx, func() {
		roomId, err := s.currentRoom(ctx, params.ConnId)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to get current room", "conn_id", params.ConnId, "error", err)
			return
		}

		if roomId == "" {
			return
		}

		if err := s.connRepo.Update(params.ConnId, &domain.PresencePatch{
			CurrentlyWatching: &params.MediaId,
			CurrentTime:       &params.Time,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to update watch state", "conn_id", params.ConnId, "error", err)
		}
	})
}
