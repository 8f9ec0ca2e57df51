package borrowing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bogdAAAn1/library-service/notifier"
)

// OverdueWorker periodically reminds borrowers about overdue books.
type OverdueWorker struct {
	r   Repo
	n   notifier.Dispatcher
	log *slog.Logger
}

func NewOverdueWorker(r Repo, n notifier.Dispatcher, log *slog.Logger) *OverdueWorker {
	return &OverdueWorker{r: r, n: n, log: log}
}

// Start runs a first scan immediately and then one per interval until ctx
// is done.
func (w *OverdueWorker) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		w.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.run(ctx)
			}
		}
	}()
}

func (w *OverdueWorker) run(ctx context.Context) {
	if n, err := w.RunOnce(ctx, time.Now().UTC()); err != nil {
		w.log.Error("overdue scan failed", "err", err)
	} else if n > 0 {
		w.log.Info("overdue reminders sent", "count", n)
	}
}

// RunOnce scans ACTIVE borrowings past their expected return date and
// dispatches one reminder per borrowing. Returns the number of reminders.
func (w *OverdueWorker) RunOnce(ctx context.Context, now time.Time) (int, error) {
	rows, err := w.r.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		_ = w.n.Notify(ctx, fmt.Sprintf(
			"Overdue borrowing:\nBook: %s\nExpected return: %s\nPlease return the book and settle the fine.",
			row.BookTitle, row.ExpectedReturnDate.Format(time.DateOnly),
		))
	}
	return len(rows), nil
}
