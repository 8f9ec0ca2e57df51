package notifier

import (
	"context"
	"log/slog"
	"time"
)

const sendTimeout = 10 * time.Second

type async struct {
	d   Dispatcher
	log *slog.Logger
}

// NewAsync wraps a dispatcher so sends are fire-and-forget: the call
// returns immediately and delivery failures are only logged. The send runs
// on a detached context, so the triggering request finishing first does
// not cancel it.
func NewAsync(d Dispatcher, log *slog.Logger) Dispatcher {
	return &async{d: d, log: log}
}

func (a *async) Notify(_ context.Context, message string) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := a.d.Notify(ctx, message); err != nil {
			a.log.Error("notification send failed", "err", err)
		}
	}()
	return nil
}
