// Package paymentsvc reconciles provider callbacks into payment state.
package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bogdAAAn1/library-service/model"
	"github.com/bogdAAAn1/library-service/notifier"
	paymentrepo "github.com/bogdAAAn1/library-service/repository/payment"
)

var (
	ErrNotFound  = errors.New("payment not found")
	ErrForbidden = errors.New("not the payment owner")
)

type Row = paymentrepo.Row

type Repo interface {
	FindBySession(ctx context.Context, sessionID string) (*Row, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, sessionID string) (bool, error)
	MarkExpired(ctx context.Context, sessionID string) (bool, error)
	CountPending(ctx context.Context, borrowingID int64) (int64, error)
	List(ctx context.Context, userID *int64) ([]Row, error)
	Detail(ctx context.Context, id int64) (*Row, error)
}

type Service interface {
	// Confirm marks the session's payment PAID. Idempotent: duplicate
	// callbacks are a no-op and reconciliation runs at most once.
	Confirm(ctx context.Context, sessionID string) error

	// Cancel marks a pending session EXPIRED. The borrowing is untouched.
	Cancel(ctx context.Context, sessionID string) error

	List(ctx context.Context, requesterID int64, staff bool) ([]Row, error)
	Detail(ctx context.Context, requesterID int64, staff bool, id int64) (*Row, error)
}

type service struct {
	db *sql.DB
	r  Repo
	n  notifier.Dispatcher
}

func New(db *sql.DB, r Repo, n notifier.Dispatcher) Service {
	return &service{db: db, r: r, n: n}
}

func (s *service) Confirm(ctx context.Context, sessionID string) (err error) {
	row, err := s.r.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if row.Status != model.PaymentPending {
		// Already settled or expired; duplicate delivery.
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.r.MarkPaid(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	if !ok {
		// A concurrent callback won the guarded update and already reconciled.
		return nil
	}

	_ = s.n.Notify(ctx, fmt.Sprintf(
		"Payment settled: %s$ (%s) for borrowing #%d",
		row.MoneyToPay.StringFixed(2), row.Type, row.BorrowingID,
	))

	pending, err := s.r.CountPending(ctx, row.BorrowingID)
	if err != nil {
		return err
	}
	if pending == 0 {
		_ = s.n.Notify(ctx, fmt.Sprintf("Borrowing #%d is fully settled.", row.BorrowingID))
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, sessionID string) error {
	ok, err := s.r.MarkExpired(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish unknown sessions from already-settled ones.
		if _, err := s.r.FindBySession(ctx, sessionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, requesterID int64, staff bool) ([]Row, error) {
	if staff {
		return s.r.List(ctx, nil)
	}
	return s.r.List(ctx, &requesterID)
}

func (s *service) Detail(ctx context.Context, requesterID int64, staff bool, id int64) (*Row, error) {
	row, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !staff && row.UserID != requesterID {
		return nil, ErrForbidden
	}
	return row, nil
}
