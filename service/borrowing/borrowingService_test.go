package borrowing_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bogdAAAn1/library-service/model"
	bookrepo "github.com/bogdAAAn1/library-service/repository/book"
	striperepo "github.com/bogdAAAn1/library-service/repository/stripe"
	"github.com/bogdAAAn1/library-service/service/borrowing"
	"github.com/bogdAAAn1/library-service/util/testdb"
)

// --- mocks ---

type bookRepoMock struct {
	detailFn func(ctx context.Context, id int64) (*model.Book, error)

	reserveErr   error
	reserveCalls int
	releaseCalls int
}

func (m *bookRepoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *bookRepoMock) Reserve(ctx context.Context, tx *sql.Tx, bookID int64) error {
	m.reserveCalls++
	return m.reserveErr
}
func (m *bookRepoMock) Release(ctx context.Context, tx *sql.Tx, bookID int64) error {
	m.releaseCalls++
	return nil
}

type borrowRepoMock struct {
	getFn          func(ctx context.Context, id int64) (*model.Borrowing, error)
	markReturnedOK bool

	inserted    []insertedBorrowing
	markCalls   int
	lastFilter  borrowing.ListFilter
	listRows    []borrowing.Row
	overdueRows []borrowing.Row
}

type insertedBorrowing struct {
	bookID, userID           int64
	borrowDate, expectedDate time.Time
}

func (m *borrowRepoMock) Insert(ctx context.Context, tx *sql.Tx, bookID, userID int64, borrowDate, expectedReturn time.Time) (int64, error) {
	m.inserted = append(m.inserted, insertedBorrowing{bookID, userID, borrowDate, expectedReturn})
	return 77, nil
}
func (m *borrowRepoMock) Get(ctx context.Context, id int64) (*model.Borrowing, error) {
	return m.getFn(ctx, id)
}
func (m *borrowRepoMock) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedOn time.Time) (bool, error) {
	m.markCalls++
	return m.markReturnedOK, nil
}
func (m *borrowRepoMock) List(ctx context.Context, f borrowing.ListFilter) ([]borrowing.Row, error) {
	m.lastFilter = f
	return m.listRows, nil
}
func (m *borrowRepoMock) ListOverdue(ctx context.Context, asOf time.Time) ([]borrowing.Row, error) {
	return m.overdueRows, nil
}

type paymentRepoMock struct {
	inserted []model.Payment
}

func (m *paymentRepoMock) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	p.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, *p)
	return nil
}
func (m *paymentRepoMock) ListByBorrowing(ctx context.Context, borrowingID int64) ([]model.Payment, error) {
	return m.inserted, nil
}

type providerFake struct {
	err  error
	reqs []striperepo.CreateSessionReq
}

func (p *providerFake) CreateCheckoutSession(ctx context.Context, req striperepo.CreateSessionReq) (*striperepo.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.reqs = append(p.reqs, req)
	return &striperepo.Session{ID: "cs_test_123", URL: "https://checkout.test/cs_test_123"}, nil
}

type recorder struct{ msgs []string }

func (r *recorder) Notify(ctx context.Context, m string) error {
	r.msgs = append(r.msgs, m)
	return nil
}

// --- helpers ---

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testBook() *model.Book {
	return &model.Book{
		ID:          5,
		Title:       "Kobzar",
		Author:      "Taras Shevchenko",
		Cover:       model.CoverHard,
		DailyFee:    decimal.NewFromInt(10),
		TotalCopies: 3,
		Inventory:   2,
	}
}

type fixture struct {
	books    *bookRepoMock
	borrows  *borrowRepoMock
	payments *paymentRepoMock
	provider *providerFake
	notes    *recorder
	svc      borrowing.Service
}

func newFixture() *fixture {
	f := &fixture{
		books:    &bookRepoMock{detailFn: func(ctx context.Context, id int64) (*model.Book, error) { return testBook(), nil }},
		borrows:  &borrowRepoMock{markReturnedOK: true},
		payments: &paymentRepoMock{},
		provider: &providerFake{},
		notes:    &recorder{},
	}
	f.svc = borrowing.New(testdb.New(), f.books, f.borrows, f.payments, f.provider, f.notes, "http://localhost:8080")
	return f
}

// --- Create ---

func TestCreate_InvalidDate(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-01"), day("2025-01-02"))
	require.Equal(t, borrowing.ErrInvalidDate, borrowing.Code(err))
	require.Empty(t, f.provider.reqs)
	require.Empty(t, f.borrows.inserted)
}

func TestCreate_BookNotFound(t *testing.T) {
	f := newFixture()
	f.books.detailFn = func(ctx context.Context, id int64) (*model.Book, error) { return nil, sql.ErrNoRows }
	_, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-05"), day("2025-01-01"))
	require.Equal(t, borrowing.ErrBookNotFound, borrowing.Code(err))
}

func TestCreate_OutOfStock(t *testing.T) {
	f := newFixture()
	f.books.detailFn = func(ctx context.Context, id int64) (*model.Book, error) {
		b := testBook()
		b.Inventory = 0
		return b, nil
	}
	_, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-05"), day("2025-01-01"))
	require.Equal(t, borrowing.ErrOutOfStock, borrowing.Code(err))
	require.Empty(t, f.provider.reqs, "no checkout session for an unavailable book")
	require.Empty(t, f.borrows.inserted)
	require.Empty(t, f.payments.inserted)
}

func TestCreate_ReserveRaceLoser(t *testing.T) {
	// Pre-check saw a copy, but a concurrent borrower took the last one.
	f := newFixture()
	f.books.reserveErr = bookrepo.ErrOutOfStock
	_, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-05"), day("2025-01-01"))
	require.Equal(t, borrowing.ErrOutOfStock, borrowing.Code(err))
	require.Empty(t, f.borrows.inserted)
	require.Empty(t, f.payments.inserted)
}

func TestCreate_ProviderFailure(t *testing.T) {
	f := newFixture()
	f.provider.err = errors.New("stripe is down")
	_, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-05"), day("2025-01-01"))
	require.Equal(t, borrowing.ErrPaymentProvider, borrowing.Code(err))
	require.Zero(t, f.books.reserveCalls, "no reservation without a payment session")
	require.Empty(t, f.payments.inserted, "no pending payment row may survive a provider failure")
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	out, err := f.svc.Create(context.Background(), 1, 5, day("2025-01-05"), day("2025-01-01"))
	require.NoError(t, err)

	require.EqualValues(t, 77, out.BorrowingID)
	require.Equal(t, "Kobzar", out.BookTitle)
	require.Equal(t, "https://checkout.test/cs_test_123", out.PaymentURL)
	require.Equal(t, model.PaymentPending, out.PaymentStatus)

	require.Equal(t, 1, f.books.reserveCalls)
	require.Len(t, f.borrows.inserted, 1)
	require.Equal(t, day("2025-01-01"), f.borrows.inserted[0].borrowDate)
	require.Equal(t, day("2025-01-05"), f.borrows.inserted[0].expectedDate)

	// Creation charges the 1-day floor of the rental fee, never a fine.
	require.Len(t, f.payments.inserted, 1)
	p := f.payments.inserted[0]
	require.Equal(t, model.TypePayment, p.Type)
	require.Equal(t, model.PaymentPending, p.Status)
	require.True(t, p.MoneyToPay.Equal(decimal.NewFromInt(10)), "got %s", p.MoneyToPay)
	require.EqualValues(t, 77, p.BorrowingID)

	require.Len(t, f.notes.msgs, 1)
	require.Contains(t, f.notes.msgs[0], "Kobzar")
}

// --- Return ---

func activeBorrowing() *model.Borrowing {
	return &model.Borrowing{
		ID:                 77,
		BookID:             5,
		UserID:             1,
		BorrowDate:         day("2025-01-01"),
		ExpectedReturnDate: day("2025-01-05"),
	}
}

func TestReturn_NotFound(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return nil, sql.ErrNoRows }
	_, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-03"))
	require.Equal(t, borrowing.ErrNotFound, borrowing.Code(err))
}

func TestReturn_Forbidden(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	_, err := f.svc.Return(context.Background(), 2, false, 77, day("2025-01-03"))
	require.Equal(t, borrowing.ErrForbidden, borrowing.Code(err))
	require.Zero(t, f.books.releaseCalls)
	require.Zero(t, f.borrows.markCalls)
}

func TestReturn_StaffMayReturnForBorrower(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	_, err := f.svc.Return(context.Background(), 99, true, 77, day("2025-01-03"))
	require.NoError(t, err)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	f := newFixture()
	returned := day("2025-01-02")
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) {
		b := activeBorrowing()
		b.ActualReturnDate = &returned
		return b, nil
	}
	_, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-03"))
	require.Equal(t, borrowing.ErrAlreadyReturned, borrowing.Code(err))
	require.Zero(t, f.books.releaseCalls, "inventory must not be released twice")
}

func TestReturn_ConcurrentLoser(t *testing.T) {
	// The pre-check saw an active borrowing but the guarded update lost the race.
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	f.borrows.markReturnedOK = false
	_, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-03"))
	require.Equal(t, borrowing.ErrAlreadyReturned, borrowing.Code(err))
	require.Equal(t, 1, f.borrows.markCalls)
	require.Zero(t, f.books.releaseCalls)
	require.Empty(t, f.payments.inserted)
}

func TestReturn_OnTime(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }

	out, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-03"))
	require.NoError(t, err)

	require.Equal(t, model.TypePayment, out.Type)
	require.True(t, out.Amount.Equal(decimal.NewFromInt(20)), "2 days at 10; got %s", out.Amount)
	require.Equal(t, "The book is returned on time. Please pay the rental fee.", out.Message)

	require.Equal(t, 1, f.books.releaseCalls)
	require.Len(t, f.payments.inserted, 1)
	require.Equal(t, model.PaymentPending, f.payments.inserted[0].Status)
}

func TestReturn_Overdue(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }

	out, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-07"))
	require.NoError(t, err)

	// rental 6x10=60 plus fine 2x10x2=40
	require.Equal(t, model.TypeFine, out.Type)
	require.True(t, out.Amount.Equal(decimal.NewFromInt(100)), "got %s", out.Amount)
	require.Equal(t, "The book is returned overdue. You need to pay a fine.", out.Message)
}

func TestReturn_ProviderFailureLeavesBorrowingActive(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	f.provider.err = errors.New("timeout")

	_, err := f.svc.Return(context.Background(), 1, false, 77, day("2025-01-03"))
	require.Equal(t, borrowing.ErrPaymentProvider, borrowing.Code(err))
	require.Zero(t, f.borrows.markCalls)
	require.Zero(t, f.books.releaseCalls)
	require.Empty(t, f.payments.inserted)
}

// --- Get / List ---

func TestGet_Forbidden(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	_, err := f.svc.Get(context.Background(), 2, false, 77)
	require.Equal(t, borrowing.ErrForbidden, borrowing.Code(err))
}

func TestGet_WithPayments(t *testing.T) {
	f := newFixture()
	f.borrows.getFn = func(ctx context.Context, id int64) (*model.Borrowing, error) { return activeBorrowing(), nil }
	f.payments.inserted = []model.Payment{{ID: 1, BorrowingID: 77, Status: model.PaymentPaid}}

	out, err := f.svc.Get(context.Background(), 1, false, 77)
	require.NoError(t, err)
	require.EqualValues(t, 77, out.Borrowing.ID)
	require.Len(t, out.Payments, 1)
}

func TestList_NonStaffIsScopedToSelf(t *testing.T) {
	f := newFixture()
	other := int64(99)
	_, err := f.svc.List(context.Background(), 1, false, borrowing.ListFilter{UserID: &other})
	require.NoError(t, err)
	require.NotNil(t, f.borrows.lastFilter.UserID)
	require.EqualValues(t, 1, *f.borrows.lastFilter.UserID, "supplied user_id filter must be overridden")
}

func TestList_StaffFilterIsKept(t *testing.T) {
	f := newFixture()
	other := int64(99)
	active := true
	_, err := f.svc.List(context.Background(), 1, true, borrowing.ListFilter{UserID: &other, IsActive: &active})
	require.NoError(t, err)
	require.EqualValues(t, 99, *f.borrows.lastFilter.UserID)
	require.True(t, *f.borrows.lastFilter.IsActive)
}
