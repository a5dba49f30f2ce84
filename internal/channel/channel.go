package channel

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrDisconnected = errors.New("realtime channel disconnected")

// Handler receives the raw data of one inbound event.
type Handler func(ctx context.Context, data json.RawMessage)

// Channel is a bidirectional event pipe to the realtime server. It may drop emits while
// disconnected and does not replay them after reconnecting.
type Channel interface {
	Emit(ctx context.Context, event string, payload any) error
	On(event string, h Handler)
	Connected() bool
}

// Envelope is the frame carried on the wire.
type Envelope struct {
	Event  string          `json:"event"`
	UserID string          `json:"userId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}
