package publisher

import "context"

// Publisher represents a service for publishing deal events
type Publisher interface {
	// Publish appends a message under key to the deal stream
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// Nop discards every message. It stands in when Redis is not configured.
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, string, []byte) error { return nil }

// TrimStreams implements Publisher
func (Nop) TrimStreams(context.Context) error { return nil }

// Close implements Publisher
func (Nop) Close() error { return nil }
