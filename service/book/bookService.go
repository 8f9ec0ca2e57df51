package booksvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/model"
	"github.com/bogdAAAn1/library-service/notifier"
	repo "github.com/bogdAAAn1/library-service/repository/book"
)

type ListFilter = repo.ListFilter

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f ListFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	List(ctx context.Context, f ListFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type service struct {
	r Repo
	n notifier.Dispatcher
}

func New(r Repo, n notifier.Dispatcher) Service { return &service{r: r, n: n} }

func (s *service) Create(ctx context.Context, b *model.Book) (int64, error) {
	if b.Title == "" || b.Author == "" {
		return 0, errors.New("invalid payload")
	}
	if b.DailyFee.LessThan(decimal.Zero) || b.TotalCopies < 0 {
		return 0, errors.New("invalid payload")
	}
	if b.Cover != model.CoverHard && b.Cover != model.CoverSoft {
		return 0, errors.New("invalid cover")
	}
	if err := s.r.Create(ctx, b); err != nil {
		return 0, err
	}

	_ = s.n.Notify(ctx, fmt.Sprintf(
		"We have a new book:\nBook: %s\nAuthor: %s",
		b.Title, b.Author,
	))
	return b.ID, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.Detail(ctx, id)
}
