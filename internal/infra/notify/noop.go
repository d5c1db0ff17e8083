package notify

import (
	"context"
	"sync"

	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier records messages in memory, for tests and dev mode.
type NoopNotifier struct {
	mu   sync.Mutex
	Sent []SentMessage
}

type SentMessage struct {
	Phone string
	Text  string
}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Name() string { return "noop" }

func (n *NoopNotifier) Send(ctx context.Context, phoneNumber, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, SentMessage{Phone: phoneNumber, Text: text})
	return nil
}

// Messages returns a copy of everything sent so far.
func (n *NoopNotifier) Messages() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SentMessage, len(n.Sent))
	copy(out, n.Sent)
	return out
}
