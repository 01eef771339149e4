package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// MockNATSClient is an in-memory stand-in for natsclient.Client's PublishMsg
// and Subscribe. Subjects support the * and > wildcards. Thread-safe.
type MockNATSClient struct {
	mu            sync.RWMutex
	messages      map[string][]*nats.Msg
	subscriptions map[string][]func(context.Context, *nats.Msg)
	closed        bool
}

// NewMockNATSClient creates a new mock NATS client.
func NewMockNATSClient() *MockNATSClient {
	return &MockNATSClient{
		messages:      make(map[string][]*nats.Msg),
		subscriptions: make(map[string][]func(context.Context, *nats.Msg)),
	}
}

// PublishMsg records msg and delivers it synchronously to matching handlers.
func (c *MockNATSClient) PublishMsg(ctx context.Context, msg *nats.Msg) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("client is closed")
	}

	c.messages[msg.Subject] = append(c.messages[msg.Subject], msg)

	// Copy handlers to avoid holding lock during callbacks
	var handlers []func(context.Context, *nats.Msg)
	for pattern, hs := range c.subscriptions {
		if SubjectMatches(pattern, msg.Subject) {
			handlers = append(handlers, hs...)
		}
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		msgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		handler(msgCtx, msg)
		cancel()
	}

	return nil
}

// Publish wraps data in a message without headers.
func (c *MockNATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	return c.PublishMsg(ctx, &nats.Msg{Subject: subject, Data: data})
}

// Subscribe registers handler for subject. The returned subscription is a
// placeholder carrying only the subject.
func (c *MockNATSClient) Subscribe(ctx context.Context, subject string, handler func(context.Context, *nats.Msg)) (*nats.Subscription, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	c.subscriptions[subject] = append(c.subscriptions[subject], handler)
	return &nats.Subscription{Subject: subject}, nil
}

// GetMessages returns a copy of the messages published on subject.
func (c *MockNATSClient) GetMessages(subject string) []*nats.Msg {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := c.messages[subject]
	if msgs == nil {
		return nil
	}
	result := make([]*nats.Msg, len(msgs))
	copy(result, msgs)
	return result
}

// GetMessageCount returns the number of messages on a subject.
func (c *MockNATSClient) GetMessageCount(subject string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages[subject])
}

// ClearAll clears all messages from all subjects.
func (c *MockNATSClient) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make(map[string][]*nats.Msg)
}

// Close closes the mock client.
func (c *MockNATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// SubjectMatches reports whether subject matches pattern using NATS token rules.
func SubjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, p := range pt {
		if p == ">" {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
