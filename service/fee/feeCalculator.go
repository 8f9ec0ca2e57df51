// Package fee computes rental fees and overdue fines. Pure functions,
// calendar-day granularity, one reference date per operation.
package fee

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/model"
)

// FineMultiplier is applied to the daily fee for every overdue day.
const FineMultiplier = 2

// DaysBetween returns whole calendar days from a to b, ignoring clock time.
func DaysBetween(a, b time.Time) int64 {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int64(bd.Sub(ad).Hours() / 24)
}

// RentalFee charges at least one day, so a same-day return is never free.
func RentalFee(borrowDate, ref time.Time, dailyFee decimal.Decimal) decimal.Decimal {
	days := DaysBetween(borrowDate, ref)
	if days < 1 {
		days = 1
	}
	return dailyFee.Mul(decimal.NewFromInt(days))
}

// TypeFor decides whether the settlement is a regular payment or a fine.
func TypeFor(expectedReturn, ref time.Time) model.PaymentType {
	if DaysBetween(expectedReturn, ref) > 0 {
		return model.TypeFine
	}
	return model.TypePayment
}

// LateFee is overdue days times the daily fee times the multiplier,
// zero when the return is on time.
func LateFee(expectedReturn, ref time.Time, dailyFee decimal.Decimal, multiplier int64) decimal.Decimal {
	overdue := DaysBetween(expectedReturn, ref)
	if overdue <= 0 {
		return decimal.Zero
	}
	return dailyFee.Mul(decimal.NewFromInt(overdue)).Mul(decimal.NewFromInt(multiplier))
}

// Total is the full amount due at ref: rental fee plus late fee,
// both evaluated against the same reference date.
func Total(borrowDate, expectedReturn, ref time.Time, dailyFee decimal.Decimal) decimal.Decimal {
	return RentalFee(borrowDate, ref, dailyFee).Add(LateFee(expectedReturn, ref, dailyFee, FineMultiplier))
}

// Message is the settlement text shown to the borrower on return.
func Message(expectedReturn, ref time.Time) string {
	if TypeFor(expectedReturn, ref) == model.TypeFine {
		return "The book is returned overdue. You need to pay a fine."
	}
	return "The book is returned on time. Please pay the rental fee."
}
