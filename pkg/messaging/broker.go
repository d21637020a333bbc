package messaging

import (
	"context"
)

// Message is a payload received from a channel.
type Message struct {
	Channel string
	Payload []byte
}

// Broker defines the interface for message brokers
type Broker interface {
	// Publish sends payload to channel. Payloads are raw JSON.
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe delivers messages from the given channels until ctx is done.
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	Close() error
}
