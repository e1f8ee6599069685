package notify

import (
	"context"
	"sync"

	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

// Message is one delivery recorded by the in-memory notifier
type Message struct {
	Channel    types.NotificationType
	Recipients []string
	Subject    string
	Body       string
}

// MemoryNotifier records deliveries instead of sending them. Used for
// development mode and tests. FailWith, when set, makes every Send return
// that error to exercise retry paths.
type MemoryNotifier struct {
	mu       sync.Mutex
	sent     []Message
	FailWith error
}

var _ interfaces.Notifier = &MemoryNotifier{}

// NewMemory creates an in-memory notifier
func NewMemory() *MemoryNotifier {
	return &MemoryNotifier{}
}

// Send records the notification
func (n *MemoryNotifier) Send(ctx context.Context, channel types.NotificationType, recipients []string, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.FailWith != nil {
		return n.FailWith
	}

	n.sent = append(n.sent, Message{
		Channel:    channel,
		Recipients: append([]string{}, recipients...),
		Subject:    subject,
		Body:       body,
	})
	return nil
}

// Sent returns a copy of all recorded deliveries
func (n *MemoryNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message{}, n.sent...)
}
