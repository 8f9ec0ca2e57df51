// model/book.go
package model

import "github.com/shopspring/decimal"

type BookCover string

const (
	CoverHard BookCover = "Hard"
	CoverSoft BookCover = "Soft"
)

type Book struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Cover       BookCover       `json:"cover"`
	DailyFee    decimal.Decimal `json:"daily_fee"`
	TotalCopies int64           `json:"total_copies"`
	Inventory   int64           `json:"inventory"`
}
