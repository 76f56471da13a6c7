package queue

import (
	"context"
	"sync"
)

// Client sends sync notices to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// MemoryClient keeps notices in process. It backs local development when no
// queue URL is configured and lets tests inspect what was enqueued.
type MemoryClient struct {
	mu   sync.Mutex
	sent []Message
}

// Send records the message.
func (m *MemoryClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of recorded messages in send order.
func (m *MemoryClient) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

var _ Client = (*MemoryClient)(nil)
