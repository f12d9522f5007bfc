package notify

import "context"

// Message is a rendered notification ready for delivery.
type Message struct {
	Channel int     `json:"channel"`
	Kind    string  `json:"kind"`
	Level   string  `json:"level"`
	Value   float64 `json:"value"`
	Content string  `json:"content"`
}

// Notifier delivers messages to an external system.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. Implementations must be safe for concurrent use.
	Send(ctx context.Context, msg Message) error
}
