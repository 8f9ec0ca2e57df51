package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bogdAAAn1/library-service/model"
)

// ErrOutOfStock is returned by Reserve when no copy is available.
var ErrOutOfStock = errors.New("no available copies")

type ListFilter struct {
	Title  string
	Author string
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f ListFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	// Inventory ledger. Both run inside the caller's transaction and are
	// atomic per book row: the guard predicate is re-evaluated by the
	// UPDATE itself, so concurrent reservations cannot over-book.
	Reserve(ctx context.Context, tx *sql.Tx, bookID int64) error
	Release(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (title, author, cover, daily_fee, total_copies, inventory)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.Cover, b.DailyFee, b.TotalCopies).Scan(&b.ID)
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]model.Book, error) {
	const q = `
SELECT id, title, author, cover, daily_fee, total_copies, inventory
FROM books
WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
  AND ($2 = '' OR author ILIKE '%' || $2 || '%')
ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.Title, f.Author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.DailyFee, &b.TotalCopies, &b.Inventory); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, author, cover, daily_fee, total_copies, inventory
FROM books
WHERE id = $1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Cover, &b.DailyFee, &b.TotalCopies, &b.Inventory,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Reserve(ctx context.Context, tx *sql.Tx, bookID int64) error {
	// Guard: only decrement while a copy is left.
	const q = `
UPDATE books
SET inventory = inventory - 1
WHERE id = $1
  AND inventory > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, bookID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrOutOfStock
	}
	return nil
}

func (r *repo) Release(ctx context.Context, tx *sql.Tx, bookID int64) error {
	// Capped at total_copies; paired Reserve/Release never hits the cap.
	const q = `
UPDATE books
SET inventory = LEAST(inventory + 1, total_copies)
WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
