package email

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/logging/logger"
)

// LogSender writes messages to the logger instead of delivering them. It is
// the development default.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a log sender
func NewLogSender(l *logger.Logger) *LogSender {
	return &LogSender{logger: l}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.logger.Info(ctx, "email not delivered, log provider", "to", msg.To, "subject", msg.Subject, "message_id", id)
	return id, nil
}

// MemorySender keeps sent messages in memory.
type MemorySender struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned by Send and nothing is recorded.
	Err error
}

// NewMemorySender creates a memory sender
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// Send records the message
func (s *MemorySender) Send(_ context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.sent = append(s.sent, *msg)
	return uuid.NewString(), nil
}

// Sent returns a copy of the recorded messages
func (s *MemorySender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// SentTo returns the messages recorded for one recipient
func (s *MemorySender) SentTo(to string) []Message {
	var out []Message
	for _, m := range s.Sent() {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}
