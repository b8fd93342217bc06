// Package toast holds the transient notifications raised by client flows.
package toast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Type is the category of a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Message is one notification.
type Message struct {
	ID          string `json:"id"`
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Center keeps the visible notifications in the order they were raised.
// It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	messages []Message
	logger   *slog.Logger
}

// NewCenter creates an empty Center that logs through logger, or
// slog.Default() when logger is nil.
func NewCenter(logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{logger: logger}
}

// AddToast shows msg and returns its id. A fresh id is always assigned and
// an empty Type becomes TypeInfo.
func (c *Center) AddToast(msg Message) string {
	msg.ID = uuid.NewString()
	if msg.Type == "" {
		msg.Type = TypeInfo
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	c.logger.Debug("toast added",
		slog.String("id", msg.ID),
		slog.String("type", string(msg.Type)),
		slog.String("title", msg.Title),
	)
	return msg.ID
}

// RemoveToast dismisses the message with id. It reports whether one was
// found.
func (c *Center) RemoveToast(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, m := range c.messages {
		if m.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a copy of the visible messages, oldest first.
func (c *Center) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
