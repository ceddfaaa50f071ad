package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNoRoom             = errors.New("no room to leave")
	ErrConnNotFound       = errors.New("connection not found")
	ErrServiceStopped     = errors.New("service stopped")
	ErrCodeSpaceExhausted = errors.New("no free room code")
)

const DefaultProbePeriod = 500 * time.Millisecond

type iConnRepo interface {
	Register(id string) (domain.Presence, error)
	Get(id string) (domain.Presence, error)
	Update(id string, patch *domain.PresencePatch) error
	Remove(id string) error
	Length() int
}

type iRoomRepo interface {
	AddMember(context.Context, *room.AddMemberParams) error
	RemoveMember(ctx context.Context, memberId string) (string, error)
	GetMemberRoomId(ctx context.Context, memberId string) (string, error)
	GetMemberIds(ctx context.Context, roomId string) ([]string, error)
	GetRoomsCount(context.Context) (int, error)
}

type iSender interface {
	Send(connId string, v any) error
}

type iCodeGenerator interface {
	Generate() (string, error)
}

type Config struct {
	ProbePeriod time.Duration
}

// service serializes every state change through a single session loop started by Run.
// Registry, membership store and probe table are touched only from that loop.
type service struct {
	connRepo      iConnRepo
	roomRepo      iRoomRepo
	sender        iSender
	codeGenerator iCodeGenerator
	logger        *slog.Logger
	probePeriod   time.Duration
	now           func() time.Time

	probes map[string]*probe
	events chan func(context.Context)
	done   chan struct{}
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, sender iSender, codeGenerator iCodeGenerator, logger *slog.Logger, cfg *Config) *service {
	probePeriod := cfg.ProbePeriod
	if probePeriod <= 0 {
		probePeriod = DefaultProbePeriod
	}

	return &service{
		connRepo:      connRepo,
		roomRepo:      roomRepo,
		sender:        sender,
		codeGenerator: codeGenerator,
		logger:        logger,
		probePeriod:   probePeriod,
		now:           time.Now,
		probes:        make(map[string]*probe),
		events:        make(chan func(context.Context)),
		done:          make(chan struct{}),
	}
}

// Run executes submitted operations one at a time until ctx is done.
// All probes are stopped when it returns.
func (s *service) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "session loop started", "probe_period", s.probePeriod)
	defer func() {
		for connId, p := range s.probes {
			p.close()
			delete(s.probes, connId)
		}
		close(s.done)
		s.logger.InfoContext(ctx, "session loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.events:
			fn(ctx)
		}
	}
}

// exec runs fn on the session loop and waits for it to finish.
func (s *service) exec(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	event := func(context.Context) {
		defer close(finished)
		fn()
	}

	select {
	case s.events <- event:
	case <-s.done:
		return ErrServiceStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

func (s *service) send(ctx context.Context, connId string, msg *Message) {
	if err := s.sender.Send(connId, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send message", "conn_id", connId, "type", msg.Type, "error", err)
	}
}

// broadcast sends msg to every member of roomId.
func (s *service) broadcast(ctx context.Context, roomId string, msg *Message) {
	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get member ids", "room_id", roomId, "error", err)
		return
	}

	for _, memberId := range memberIds {
		s.send(ctx, memberId, msg)
	}
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if execErr := s.exec(ctx, func() {
		stats.Connections = s.connRepo.Length()
		stats.Rooms, err = s.roomRepo.GetRoomsCount(ctx)
	}); execErr != nil {
		return Stats{}, execErr
	}

	if err != nil {
		return Stats{}, fmt.Errorf("failed to count rooms: %w", err)
	}

	return stats, nil
}
