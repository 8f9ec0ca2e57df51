package paymentrepo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/model"
)

// Row is a payment joined with the owning borrowing's user, so callers
// can scope access without a second lookup.
type Row struct {
	ID          int64               `json:"id"`
	BorrowingID int64               `json:"borrowing_id"`
	UserID      int64               `json:"user_id"`
	Status      model.PaymentStatus `json:"status"`
	Type        model.PaymentType   `json:"type"`
	MoneyToPay  decimal.Decimal     `json:"money_to_pay"`
	SessionID   string              `json:"session_id"`
	SessionURL  string              `json:"session_url"`
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	FindBySession(ctx context.Context, sessionID string) (*Row, error)

	// MarkPaid flips PENDING to PAID; false means the row was not PENDING
	// anymore, which makes duplicate webhook deliveries a no-op.
	MarkPaid(ctx context.Context, tx *sql.Tx, sessionID string) (bool, error)
	MarkExpired(ctx context.Context, sessionID string) (bool, error)

	CountPending(ctx context.Context, borrowingID int64) (int64, error)
	ListByBorrowing(ctx context.Context, borrowingID int64) ([]model.Payment, error)
	List(ctx context.Context, userID *int64) ([]Row, error)
	Detail(ctx context.Context, id int64) (*Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (borrowing_id, status, type, money_to_pay, session_id, session_url)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`
	return tx.QueryRowContext(ctx, q,
		p.BorrowingID, p.Status, p.Type, p.MoneyToPay, p.SessionID, p.SessionURL,
	).Scan(&p.ID)
}

func (r *repo) FindBySession(ctx context.Context, sessionID string) (*Row, error) {
	const q = `
SELECT p.id, p.borrowing_id, br.user_id, p.status, p.type, p.money_to_pay, p.session_id, p.session_url
FROM payments p
JOIN borrowings br ON br.id = p.borrowing_id
WHERE p.session_id = $1`
	var row Row
	if err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&row.ID, &row.BorrowingID, &row.UserID, &row.Status, &row.Type,
		&row.MoneyToPay, &row.SessionID, &row.SessionURL,
	); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, sessionID string) (bool, error) {
	const q = `
UPDATE payments
SET status = 'PAID'
WHERE session_id = $1
  AND status = 'PENDING'`
	res, err := tx.ExecContext(ctx, q, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) MarkExpired(ctx context.Context, sessionID string) (bool, error) {
	const q = `
UPDATE payments
SET status = 'EXPIRED'
WHERE session_id = $1
  AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, q, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) CountPending(ctx context.Context, borrowingID int64) (int64, error) {
	const q = `
SELECT COUNT(*)
FROM payments
WHERE borrowing_id = $1
  AND status <> 'PAID'`
	var n int64
	err := r.db.QueryRowContext(ctx, q, borrowingID).Scan(&n)
	return n, err
}

func (r *repo) ListByBorrowing(ctx context.Context, borrowingID int64) ([]model.Payment, error) {
	const q = `
SELECT id, borrowing_id, status, type, money_to_pay, session_id, session_url
FROM payments
WHERE borrowing_id = $1
ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, borrowingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.BorrowingID, &p.Status, &p.Type, &p.MoneyToPay, &p.SessionID, &p.SessionURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) List(ctx context.Context, userID *int64) ([]Row, error) {
	const q = `
SELECT p.id, p.borrowing_id, br.user_id, p.status, p.type, p.money_to_pay, p.session_id, p.session_url
FROM payments p
JOIN borrowings br ON br.id = p.borrowing_id
WHERE ($1::BIGINT IS NULL OR br.user_id = $1)
ORDER BY p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.BorrowingID, &row.UserID, &row.Status, &row.Type,
			&row.MoneyToPay, &row.SessionID, &row.SessionURL,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*Row, error) {
	const q = `
SELECT p.id, p.borrowing_id, br.user_id, p.status, p.type, p.money_to_pay, p.session_id, p.session_url
FROM payments p
JOIN borrowings br ON br.id = p.borrowing_id
WHERE p.id = $1`
	var row Row
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&row.ID, &row.BorrowingID, &row.UserID, &row.Status, &row.Type,
		&row.MoneyToPay, &row.SessionID, &row.SessionURL,
	); err != nil {
		return nil, err
	}
	return &row, nil
}
