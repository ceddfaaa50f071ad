package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/internal/domain"
	wssender "github.com/sharetube/syncroom/internal/repository/ws-sender"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/validator"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

type iRoomService interface {
	Connect(ctx context.Context, connId string) (domain.Presence, error)
	Disconnect(ctx context.Context, connId string) error
	ChangeUsername(context.Context, *room.ChangeUsernameParams) error
	GetUsername(ctx context.Context, connId string) (string, error)
	CreateRoom(ctx context.Context, connId string) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(ctx context.Context, connId string) error
	GetCurrentRoom(ctx context.Context, connId string) (string, error)
	Play(ctx context.Context, connId string) error
	Pause(ctx context.Context, connId string) error
	Sync(context.Context, *room.SyncParams) error
	ReportWatching(context.Context, *room.ReportWatchingParams) error
	ProbeReply(context.Context, *room.ProbeReplyParams) error
	Stats(context.Context) (room.Stats, error)
	GetRoomMembers(ctx context.Context, roomId string) ([]domain.Presence, error)
}

type iSenderRepo interface {
	Add(connId string, client wssender.Writer) error
	Remove(connId string) error
}

type Config struct {
	SendBuffer int
	ReadLimit  int64
}

type controller struct {
	roomService iRoomService
	senderRepo  iSenderRepo
	upgrader    websocket.Upgrader
	wsRouter    *wsrouter.WSRouter
	logger      *slog.Logger
	sendBuffer  int
	readLimit   int64
}

func NewController(roomService iRoomService, senderRepo iSenderRepo, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		senderRepo:  senderRepo,
		logger:      logger,
		sendBuffer:  cfg.SendBuffer,
		readLimit:   cfg.ReadLimit,
	}
	c.wsRouter = c.getWSRouter(validator.NewValidator())

	return c
}
