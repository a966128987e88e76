package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/Hearth/internal/domain/event"
)

// Event type constants for WebSocket messages that do not originate on the
// assistant event bus.
const (
	EventResponse = "assist.response"
	EventToken    = "assist.token"
)

// TokenEvent carries one streamed narration chunk.
type TokenEvent struct {
	SessionID string `json:"session_id"`
	Chunk     string `json:"chunk"`
}

// BroadcastEvent marshals a typed event and broadcasts it to all clients.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}

// Publish implements eventbus.Bus: assistant events fan out to every
// connected client under their event type.
func (h *Hub) Publish(ctx context.Context, ev event.Event) error {
	h.BroadcastEvent(ctx, string(ev.Type), ev)
	return nil
}
