package adapter

import "context"

// Notifier dispatches a fire-and-forget text message to a phone number.
// Failures are logged by callers and never block or roll back payment state.
type Notifier interface {
	Send(ctx context.Context, phoneNumber, text string) error
	Name() string
}
