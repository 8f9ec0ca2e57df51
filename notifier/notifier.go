// Package notifier is the outbound notification channel. Delivery is
// best-effort, at-most-once; failures never reach the calling operation.
package notifier

import "context"

type Dispatcher interface {
	Notify(ctx context.Context, message string) error
}

// Noop swallows everything. Used in tests and when no channel is configured.
type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }
