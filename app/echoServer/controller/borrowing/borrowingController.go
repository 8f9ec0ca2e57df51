package borrowing

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	bs "github.com/bogdAAAn1/library-service/service/borrowing"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/borrowings
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	expected, err := time.Parse(time.DateOnly, req.ExpectedReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid expected_return_date"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Create(c.Request().Context(), uid, req.BookID, expected, time.Now().UTC())
	if err != nil {
		h.Log.Error("borrowing create", "err", err)
		switch bs.Code(err) {
		case bs.ErrInvalidDate:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid return date"})
		case bs.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "this book is not available"})
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrPaymentProvider:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment provider unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                   out.BorrowingID,
		"book":                 out.BookTitle,
		"borrow_date":          out.BorrowDate.Format(time.DateOnly),
		"expected_return_date": out.ExpectedReturnDate.Format(time.DateOnly),
		"payment_url":          out.PaymentURL,
		"payment_status":       out.PaymentStatus,
	})
}

// POST /v1/borrowings/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)
	staff, _ := c.Get("is_staff").(bool)

	out, err := h.Svc.Return(c.Request().Context(), uid, staff, id, time.Now().UTC())
	if err != nil {
		h.Log.Error("borrowing return", "err", err)
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case bs.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrowing already returned"})
		case bs.ErrPaymentProvider:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment provider unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        out.Message,
		"amount":         out.Amount.StringFixed(2),
		"type":           out.Type,
		"payment_url":    out.PaymentURL,
		"payment_status": out.PaymentStatus,
	})
}

// GET /v1/borrowings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)
	staff, _ := c.Get("is_staff").(bool)

	out, err := h.Svc.Get(c.Request().Context(), uid, staff, id)
	if err != nil {
		h.Log.Error("borrowing detail", "err", err)
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/borrowings?user_id=&is_active=
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	staff, _ := c.Get("is_staff").(bool)

	var f bs.ListFilter
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		f.UserID = &id
	}
	if v := c.QueryParam("is_active"); v != "" {
		switch v {
		case "true":
			active := true
			f.IsActive = &active
		case "false":
			active := false
			f.IsActive = &active
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "is_active must be true or false"})
		}
	}

	rows, err := h.Svc.List(c.Request().Context(), uid, staff, f)
	if err != nil {
		h.Log.Error("borrowing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
