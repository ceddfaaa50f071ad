package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sharetube/syncroom/pkg/validator"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/ws", c.serveWS)
		r.Get("/stats", c.getStats)
		r.Get("/rooms/{room-id}", c.getRoom)
	})

	return r
}

func (c *controller) getWSRouter(validate *validator.Validator) *wsrouter.WSRouter {
	r := wsrouter.New(validate, c.logger)
	r.Use(c.wsRequestIdWSMw(), c.loggerWSMw())

	wsrouter.Handle(r, "change-username", c.handleChangeUsername)
	wsrouter.Handle(r, "get-username", c.handleGetUsername)
	wsrouter.Handle(r, "create-room", c.handleCreateRoom)
	wsrouter.Handle(r, "join-room", c.handleJoinRoom)
	wsrouter.Handle(r, "leave-room", c.handleLeaveRoom)
	wsrouter.Handle(r, "get-current-room", c.handleGetCurrentRoom)
	wsrouter.Handle(r, "play", c.handlePlay)
	wsrouter.Handle(r, "pause", c.handlePause)
	wsrouter.Handle(r, "sync", c.handleSync)
	wsrouter.Handle(r, "currentlyWatching", c.handleCurrentlyWatching)
	wsrouter.Handle(r, "latency-probe", c.handleLatencyProbe)

	return r
}
