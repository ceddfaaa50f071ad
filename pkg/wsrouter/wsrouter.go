package wsrouter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sharetube/syncroom/pkg/validator"
)

// Conn is the part of a websocket connection the router needs.
// WriteJSON may be called from handlers while ReadJSON is blocked.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
}

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Ack     string          `json:"ack,omitempty"`
}

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type AckOutput struct {
	Type    string `json:"type"`
	Ack     string `json:"ack"`
	Payload any    `json:"payload"`
}

type ErrorResult struct {
	Error   string                      `json:"error"`
	Details []validator.ValidationError `json:"details,omitempty"`
}

// HandlerFunc handles one decoded message. The returned value is sent back as the
// ack payload when the client asked for one.
type HandlerFunc[T any] func(ctx context.Context, conn Conn, input T) (any, error)

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type route struct {
	decode  func(json.RawMessage) (any, error)
	handler HandlerFunc[any]
}

type WSRouter struct {
	routes      map[string]route
	middlewares []Middleware
	validate    *validator.Validator
	logger      *slog.Logger
}

func New(validate *validator.Validator, logger *slog.Logger) *WSRouter {
	return &WSRouter{
		routes:   make(map[string]route),
		validate: validate,
		logger:   logger,
	}
}

func (r *WSRouter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Handle registers handler for messageType. Payloads are decoded into T and validated
// before the handler runs.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = route{
		decode: func(raw json.RawMessage) (any, error) {
			var input T
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &input); err != nil {
					return nil, err
				}
			}

			return input, nil
		},
		handler: func(ctx context.Context, conn Conn, input any) (any, error) {
			return handler(ctx, conn, input.(T))
		},
	}
}

func (r *WSRouter) ServeConn(ctx context.Context, conn Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		r.serveMessage(ctx, conn, &msg)
	}
}

func (r *WSRouter) serveMessage(ctx context.Context, conn Conn, msg *message) {
	rt, ok := r.routes[msg.Type]
	if !ok {
		r.logger.DebugContext(ctx, "unknown message type", "type", msg.Type)
		r.write(ctx, conn, &Output{
			Type:    "error",
			Payload: map[string]any{"message": "unknown message type"},
		})
		return
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)

	input, err := rt.decode(msg.Payload)
	if err != nil {
		r.logger.DebugContext(ctx, "failed to decode payload", "error", err)
		r.ack(ctx, conn, msg.Ack, &ErrorResult{Error: "invalid payload"})
		return
	}

	if errs, ok := r.validate.Validate(input); !ok {
		r.logger.DebugContext(ctx, "validation failed", "errors", errs)
		r.ack(ctx, conn, msg.Ack, &ErrorResult{Error: "validation error", Details: errs})
		return
	}

	handler := rt.handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	result, err := handler(ctx, conn, input)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to handle message", "error", err)
		r.ack(ctx, conn, msg.Ack, &ErrorResult{Error: "internal error"})
		return
	}

	if result == nil {
		result = map[string]any{"error": nil}
	}
	r.ack(ctx, conn, msg.Ack, result)
}

func (r *WSRouter) ack(ctx context.Context, conn Conn, ack string, payload any) {
	if ack == "" {
		return
	}

	r.write(ctx, conn, &AckOutput{
		Type:    "ack",
		Ack:     ack,
		Payload: payload,
	})
}

func (r *WSRouter) write(ctx context.Context, conn Conn, v any) {
	if err := conn.WriteJSON(v); err != nil {
		r.logger.InfoContext(ctx, "failed to write message", "error", err)
	}
}
