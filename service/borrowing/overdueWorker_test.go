package borrowing_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bogdAAAn1/library-service/service/borrowing"
)

func TestOverdueWorker_RunOnce(t *testing.T) {
	r := &borrowRepoMock{
		overdueRows: []borrowing.Row{
			{ID: 1, BookTitle: "Kobzar", UserID: 1, ExpectedReturnDate: day("2025-01-05")},
			{ID: 2, BookTitle: "Clean Code", UserID: 2, ExpectedReturnDate: day("2025-01-02")},
		},
	}
	notes := &recorder{}
	w := borrowing.NewOverdueWorker(r, notes, slog.Default())

	n, err := w.RunOnce(context.Background(), day("2025-01-07"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, notes.msgs, 2)
	require.Contains(t, notes.msgs[0], "Kobzar")
	require.Contains(t, notes.msgs[1], "Clean Code")
}

func TestOverdueWorker_NothingOverdue(t *testing.T) {
	r := &borrowRepoMock{}
	notes := &recorder{}
	w := borrowing.NewOverdueWorker(r, notes, slog.Default())

	n, err := w.RunOnce(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, notes.msgs)
}
