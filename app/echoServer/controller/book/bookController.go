package book

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bogdAAAn1/library-service/model"
	booksvc "github.com/bogdAAAn1/library-service/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	staff, _ := c.Get("is_staff").(bool)
	return staff
}

// POST /v1/books  (staff)
func (h *Controller) Create(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	dailyFee, err := decimal.NewFromString(req.DailyFee)
	if err != nil || dailyFee.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid daily_fee"})
	}

	b := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Cover:       model.BookCover(req.Cover),
		DailyFee:    dailyFee,
		TotalCopies: req.TotalCopies,
	}
	id, err := h.Svc.Create(c.Request().Context(), b)
	if err != nil {
		h.Log.Error("book create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /v1/books?title=&author=
func (h *Controller) List(c echo.Context) error {
	f := booksvc.ListFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}
