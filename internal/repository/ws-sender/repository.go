package wssender

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Writer queues a JSON message for a single connection.
type Writer interface {
	WriteJSON(v any) error
}

// Repo routes outbound messages to live clients by connection id.
type Repo struct {
	mu      sync.RWMutex
	clients map[string]Writer
	logger  *slog.Logger
}

func NewRepo(logger *slog.Logger) *Repo {
	return &Repo{
		clients: make(map[string]Writer),
		logger:  logger,
	}
}

func (r *Repo) Add(connId string, client Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connId]; ok {
		return ErrAlreadyExists
	}

	r.clients[connId] = client
	return nil
}

func (r *Repo) Remove(connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connId]; !ok {
		return ErrNotFound
	}

	delete(r.clients, connId)
	return nil
}

// Send queues v for connId without waiting for delivery.
func (r *Repo) Send(connId string, v any) error {
	r.mu.RLock()
	client, ok := r.clients[connId]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("send to unknown connection", "conn_id", connId)
		return ErrNotFound
	}

	return client.WriteJSON(v)
}

func (r *Repo) Length() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
