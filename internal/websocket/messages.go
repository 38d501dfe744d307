package websocket

import (
	"time"

	"github.com/gospelstack/sermon-audio/usecase"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeProgress MessageType = "generation_progress"
)

// ProgressMessage is the wire envelope for one progress event.
type ProgressMessage struct {
	Type      MessageType           `json:"type"`
	Timestamp string                `json:"timestamp"`
	Event     usecase.ProgressEvent `json:"event"`
}

// NewProgressMessage wraps a progress event for transport.
func NewProgressMessage(event usecase.ProgressEvent) ProgressMessage {
	return ProgressMessage{
		Type:      MessageTypeProgress,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     event,
	}
}
