package live

import "github.com/vango-dev/reactor/pkg/host"

// MessageType identifies a server to client message.
type MessageType string

const (
	MessageInit  MessageType = "init"
	MessageOps   MessageType = "ops"
	MessageError MessageType = "error"
)

// Message is sent to browsers over the WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	Ops   []host.Op   `json:"ops,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Event is sent by browsers when a bound handler fires.
type Event struct {
	Node  int    `json:"node"`
	Event string `json:"event"`
	Args  []any  `json:"args,omitempty"`
}
