package borrowing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/model"
	"github.com/bogdAAAn1/library-service/notifier"
	bookrepo "github.com/bogdAAAn1/library-service/repository/book"
	borrowrepo "github.com/bogdAAAn1/library-service/repository/borrowing"
	striperepo "github.com/bogdAAAn1/library-service/repository/stripe"
	"github.com/bogdAAAn1/library-service/service/fee"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidDate     ErrCode = "INVALID_DATE"
	ErrOutOfStock      ErrCode = "OUT_OF_STOCK"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrPaymentProvider ErrCode = "PAYMENT_PROVIDER"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return string(e.code) + ": " + e.cause.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error              { return codedError{code: c} }
func wrapErr(c ErrCode, cause error) error { return codedError{code: c, cause: cause} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type Created struct {
	BorrowingID        int64
	BookTitle          string
	BorrowDate         time.Time
	ExpectedReturnDate time.Time
	PaymentURL         string
	PaymentStatus      model.PaymentStatus
}

type Returned struct {
	Message       string
	Amount        decimal.Decimal
	Type          model.PaymentType
	PaymentURL    string
	PaymentStatus model.PaymentStatus
}

type Detail struct {
	Borrowing model.Borrowing `json:"borrowing"`
	Payments  []model.Payment `json:"payments"`
}

// Row / ListFilter = repository shapes
type Row = borrowrepo.Row
type ListFilter = borrowrepo.ListFilter

type BookRepo interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Reserve(ctx context.Context, tx *sql.Tx, bookID int64) error
	Release(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, bookID, userID int64, borrowDate, expectedReturn time.Time) (int64, error)
	Get(ctx context.Context, id int64) (*model.Borrowing, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedOn time.Time) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Row, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]Row, error)
}

type PaymentRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	ListByBorrowing(ctx context.Context, borrowingID int64) ([]model.Payment, error)
}

type Service interface {
	// Create: reserve a copy, open the rental payment session, persist the
	// borrowing as ACTIVE.
	Create(ctx context.Context, userID, bookID int64, expectedReturn, now time.Time) (*Created, error)

	// Return: record the return, release the copy, open the settlement session.
	Return(ctx context.Context, requesterID int64, staff bool, borrowingID int64, now time.Time) (*Returned, error)

	// Get: one borrowing with its payments, owner or staff only.
	Get(ctx context.Context, requesterID int64, staff bool, borrowingID int64) (*Detail, error)

	// List: staff may filter by user and active flag; everyone else sees
	// only their own borrowings.
	List(ctx context.Context, requesterID int64, staff bool, f ListFilter) ([]Row, error)
}

// ----- Service implementation -----

type service struct {
	db       *sql.DB
	books    BookRepo
	r        Repo
	payments PaymentRepo
	provider striperepo.Provider
	n        notifier.Dispatcher

	successURL string
	cancelURL  string
}

func New(db *sql.DB, books BookRepo, r Repo, payments PaymentRepo, provider striperepo.Provider, n notifier.Dispatcher, publicBaseURL string) Service {
	return &service{
		db:       db,
		books:    books,
		r:        r,
		payments: payments,
		provider: provider,
		n:        n,

		successURL: publicBaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  publicBaseURL + "/payment/cancel",
	}
}

// Create validates input, opens the checkout session first (a provider
// failure must not leave a PENDING payment behind), then reserves the copy,
// inserts the borrowing and the payment row in one transaction.
func (s *service) Create(ctx context.Context, userID, bookID int64, expectedReturn, now time.Time) (_ *Created, err error) {
	if fee.DaysBetween(now, expectedReturn) < 0 {
		return nil, makeErr(ErrInvalidDate)
	}

	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.Inventory < 1 {
		return nil, makeErr(ErrOutOfStock)
	}

	// Rental fee only: nothing can be overdue at creation.
	amount := fee.Total(now, expectedReturn, now, book.DailyFee)
	ptype := fee.TypeFor(expectedReturn, now)

	sess, err := s.provider.CreateCheckoutSession(ctx, striperepo.CreateSessionReq{
		ProductName: fmt.Sprintf("%s (%s: %s$)", book.Title, ptype, amount.StringFixed(2)),
		Amount:      amount,
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return nil, wrapErr(ErrPaymentProvider, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.books.Reserve(ctx, tx, bookID); err != nil {
		if errors.Is(err, bookrepo.ErrOutOfStock) {
			return nil, makeErr(ErrOutOfStock)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	borrowingID, err := s.r.Insert(ctx, tx, bookID, userID, now, expectedReturn)
	if err != nil {
		return nil, err
	}

	if err = s.payments.Insert(ctx, tx, &model.Payment{
		BorrowingID: borrowingID,
		Status:      model.PaymentPending,
		Type:        ptype,
		MoneyToPay:  amount,
		SessionID:   sess.ID,
		SessionURL:  sess.URL,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	_ = s.n.Notify(ctx, fmt.Sprintf(
		"New borrowing created:\nBook: %s\nAuthor: %s\nBorrowing date: %s\nExpected return: %s",
		book.Title, book.Author,
		now.Format(time.DateOnly), expectedReturn.Format(time.DateOnly),
	))

	return &Created{
		BorrowingID:        borrowingID,
		BookTitle:          book.Title,
		BorrowDate:         now,
		ExpectedReturnDate: expectedReturn,
		PaymentURL:         sess.URL,
		PaymentStatus:      model.PaymentPending,
	}, nil
}

// Return does all failure checks before any mutation, opens the settlement
// session, then marks the return and releases the copy atomically. The
// guarded MarkReturned makes concurrent returns single-winner: the loser
// gets ErrAlreadyReturned and nothing is applied twice.
func (s *service) Return(ctx context.Context, requesterID int64, staff bool, borrowingID int64, now time.Time) (_ *Returned, err error) {
	b, err := s.r.Get(ctx, borrowingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !staff && b.UserID != requesterID {
		return nil, makeErr(ErrForbidden)
	}
	if b.ActualReturnDate != nil {
		return nil, makeErr(ErrAlreadyReturned)
	}

	book, err := s.books.Detail(ctx, b.BookID)
	if err != nil {
		return nil, err
	}

	ptype := fee.TypeFor(b.ExpectedReturnDate, now)
	amount := fee.Total(b.BorrowDate, b.ExpectedReturnDate, now, book.DailyFee)
	msg := fee.Message(b.ExpectedReturnDate, now)

	sess, err := s.provider.CreateCheckoutSession(ctx, striperepo.CreateSessionReq{
		ProductName: fmt.Sprintf("%s (%s: %s$)", book.Title, ptype, amount.StringFixed(2)),
		Amount:      amount,
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return nil, wrapErr(ErrPaymentProvider, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.r.MarkReturned(ctx, tx, borrowingID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		err = makeErr(ErrAlreadyReturned)
		return nil, err
	}
	if err = s.books.Release(ctx, tx, b.BookID); err != nil {
		return nil, err
	}
	if err = s.payments.Insert(ctx, tx, &model.Payment{
		BorrowingID: borrowingID,
		Status:      model.PaymentPending,
		Type:        ptype,
		MoneyToPay:  amount,
		SessionID:   sess.ID,
		SessionURL:  sess.URL,
	}); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	_ = s.n.Notify(ctx, fmt.Sprintf(
		"Borrowing returned:\nBook: %s\nDue: %s$ (%s)",
		book.Title, amount.StringFixed(2), ptype,
	))

	return &Returned{
		Message:       msg,
		Amount:        amount,
		Type:          ptype,
		PaymentURL:    sess.URL,
		PaymentStatus: model.PaymentPending,
	}, nil
}

func (s *service) Get(ctx context.Context, requesterID int64, staff bool, borrowingID int64) (*Detail, error) {
	b, err := s.r.Get(ctx, borrowingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !staff && b.UserID != requesterID {
		return nil, makeErr(ErrForbidden)
	}
	payments, err := s.payments.ListByBorrowing(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	return &Detail{Borrowing: *b, Payments: payments}, nil
}

func (s *service) List(ctx context.Context, requesterID int64, staff bool, f ListFilter) ([]Row, error) {
	if !staff {
		// Supplied filters cannot widen a non-staff view.
		f.UserID = &requesterID
	}
	return s.r.List(ctx, f)
}
