package payment

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/bogdAAAn1/library-service/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// GET /payment/success?session_id=...
// Provider success callback; client-supplied data never flips a payment,
// the confirm path only trusts the session id lookup.
func (h *Controller) Success(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "session_id is required"})
	}

	if err := h.Svc.Confirm(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, paymentsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown payment session"})
		}
		h.Log.Error("payment confirm", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment successful"})
}

// GET /payment/cancel?session_id=...
func (h *Controller) Cancel(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID != "" {
		if err := h.Svc.Cancel(c.Request().Context(), sessionID); err != nil {
			if errors.Is(err, paymentsvc.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown payment session"})
			}
			h.Log.Error("payment cancel", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "payment canceled, the session can be paid again within 24 hours",
	})
}

// GET /v1/payments
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	staff, _ := c.Get("is_staff").(bool)

	rows, err := h.Svc.List(c.Request().Context(), uid, staff)
	if err != nil {
		h.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/payments/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)
	staff, _ := c.Get("is_staff").(bool)

	row, err := h.Svc.Detail(c.Request().Context(), uid, staff, id)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case errors.Is(err, paymentsvc.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("payment detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, row)
}
