package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	wssender "github.com/sharetube/syncroom/internal/repository/ws-sender"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

const disconnectTimeout = 5 * time.Second

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	connId := uuid.NewString()
	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := wssender.NewClient(conn, c.sendBuffer, c.readLimit, c.logger.With("conn_id", connId))
	defer client.Close()

	if err := c.senderRepo.Add(connId, client); err != nil {
		c.logger.ErrorContext(ctx, "failed to add client", "error", err)
		return
	}
	defer c.senderRepo.Remove(connId)

	go client.WritePump(ctx)

	presence, err := c.roomService.Connect(ctx, connId)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to connect", "error", err)
		return
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
		defer cancel()

		if err := c.roomService.Disconnect(disconnectCtx, connId); err != nil {
			c.logger.ErrorContext(ctx, "failed to disconnect", "error", err)
		}
	}()

	if err := client.WriteJSON(&wsrouter.Output{
		Type:    room.MessageTypeConnected,
		Payload: presence,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to send connected message", "error", err)
	}

	if err := c.wsRouter.ServeConn(ctx, client); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			c.logger.InfoContext(ctx, "connection closed unexpectedly", "error", err)
			return
		}

		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}
