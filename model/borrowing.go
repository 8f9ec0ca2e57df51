// model/borrowing.go
package model

import "time"

type BorrowingStatus string

const (
	BorrowingActive   BorrowingStatus = "ACTIVE"
	BorrowingReturned BorrowingStatus = "RETURNED"
)

type Borrowing struct {
	ID                 int64      `json:"id"`
	BookID             int64      `json:"book_id"`
	UserID             int64      `json:"user_id"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
}

// Status is derived: a borrowing is ACTIVE until actual_return_date is set.
func (b *Borrowing) Status() BorrowingStatus {
	if b.ActualReturnDate == nil {
		return BorrowingActive
	}
	return BorrowingReturned
}
