package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/roomcode"
)

type envelope map[string]any

func (c controller) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.InfoContext(r.Context(), "failed to write response", "error", err)
	}
}

func (c controller) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.roomService.Stats(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to get stats", "error", err)
		c.writeJSON(w, r, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	c.writeJSON(w, r, http.StatusOK, stats)
}

type roomResponse struct {
	RoomID  string            `json:"roomID"`
	Members []domain.Presence `json:"members"`
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := roomcode.Normalize(chi.URLParam(r, "room-id"))

	members, err := c.roomService.GetRoomMembers(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeJSON(w, r, http.StatusNotFound, envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "room_id", roomId, "error", err)
		c.writeJSON(w, r, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	c.writeJSON(w, r, http.StatusOK, roomResponse{
		RoomID:  roomId,
		Members: members,
	})
}
