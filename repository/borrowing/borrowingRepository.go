// repository/borrowing/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/bogdAAAn1/library-service/model"
)

type Row struct {
	ID                 int64      `json:"id"`
	BookID             int64      `json:"book_id"`
	BookTitle          string     `json:"book_title"`
	UserID             int64      `json:"user_id"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
}

type ListFilter struct {
	UserID   *int64
	IsActive *bool
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, bookID, userID int64, borrowDate, expectedReturn time.Time) (int64, error)
	Get(ctx context.Context, id int64) (*model.Borrowing, error)

	// MarkReturned sets actual_return_date exactly once. The IS NULL guard
	// makes concurrent returns race-safe: the loser sees false.
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedOn time.Time) (bool, error)

	List(ctx context.Context, f ListFilter) ([]Row, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, bookID, userID int64, borrowDate, expectedReturn time.Time) (int64, error) {
	const q = `
INSERT INTO borrowings (book_id, user_id, borrow_date, expected_return_date)
VALUES ($1,$2,$3,$4)
RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, bookID, userID, borrowDate, expectedReturn).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Borrowing, error) {
	const q = `
SELECT id, book_id, user_id, borrow_date, expected_return_date, actual_return_date
FROM borrowings
WHERE id = $1`
	var b model.Borrowing
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.BookID, &b.UserID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedOn time.Time) (bool, error) {
	const q = `
UPDATE borrowings
SET actual_return_date = $2
WHERE id = $1
  AND actual_return_date IS NULL`
	res, err := tx.ExecContext(ctx, q, id, returnedOn)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]Row, error) {
	const q = `
SELECT
	br.id                   AS id,
	br.book_id              AS book_id,
	b.title                 AS book_title,
	br.user_id              AS user_id,
	br.borrow_date          AS borrow_date,
	br.expected_return_date AS expected_return_date,
	br.actual_return_date   AS actual_return_date
FROM borrowings br
JOIN books b ON b.id = br.book_id
WHERE ($1::BIGINT IS NULL OR br.user_id = $1)
  AND ($2::BOOLEAN IS NULL OR ($2 AND br.actual_return_date IS NULL) OR (NOT $2 AND br.actual_return_date IS NOT NULL))
ORDER BY br.borrow_date DESC, br.id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.UserID, f.IsActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *repo) ListOverdue(ctx context.Context, asOf time.Time) ([]Row, error) {
	const q = `
SELECT
	br.id                   AS id,
	br.book_id              AS book_id,
	b.title                 AS book_title,
	br.user_id              AS user_id,
	br.borrow_date          AS borrow_date,
	br.expected_return_date AS expected_return_date,
	br.actual_return_date   AS actual_return_date
FROM borrowings br
JOIN books b ON b.id = br.book_id
WHERE br.actual_return_date IS NULL
  AND br.expected_return_date < $1
ORDER BY br.expected_return_date, br.id`
	rows, err := r.db.QueryContext(ctx, q, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var b Row
		if err := rows.Scan(
			&b.ID, &b.BookID, &b.BookTitle, &b.UserID,
			&b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
