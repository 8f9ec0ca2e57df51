package book

type CreateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Cover       string `json:"cover" validate:"required,oneof=Hard Soft"`
	DailyFee    string `json:"daily_fee" validate:"required"`
	TotalCopies int64  `json:"total_copies" validate:"required,gt=0"`
}
