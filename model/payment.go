// model/payment.go
package model

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
)

type PaymentType string

const (
	TypePayment PaymentType = "PAYMENT"
	TypeFine    PaymentType = "FINE"
)

type Payment struct {
	ID          int64           `json:"id"`
	BorrowingID int64           `json:"borrowing_id"`
	Status      PaymentStatus   `json:"status"`
	Type        PaymentType     `json:"type"`
	MoneyToPay  decimal.Decimal `json:"money_to_pay"`
	SessionID   string          `json:"session_id"`
	SessionURL  string          `json:"session_url"`
}
