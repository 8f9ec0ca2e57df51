package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/bogdAAAn1/library-service/app/echoServer/controller/auth"
	"github.com/bogdAAAn1/library-service/app/echoServer/controller/book"
	"github.com/bogdAAAn1/library-service/app/echoServer/controller/borrowing"
	"github.com/bogdAAAn1/library-service/app/echoServer/controller/payment"
	"github.com/bogdAAAn1/library-service/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrowing *borrowing.Controller
	Payment   *payment.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Payment provider callbacks
	e.GET("/payment/success", c.Payment.Success)
	e.GET("/payment/cancel", c.Payment.Cancel)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
	}))
	// user_id / is_staff extraction from verified claims
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			userID, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", userID)
			ctx.Set("is_staff", jwtx.IsStaffFromContext(ctx))
			return next(ctx)
		}
	})

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create) // staff

	// Borrowings
	auth.POST("/borrowings", c.Borrowing.Create)
	auth.GET("/borrowings", c.Borrowing.List)
	auth.GET("/borrowings/:id", c.Borrowing.Detail)
	auth.POST("/borrowings/:id/return", c.Borrowing.Return)

	// Payments
	auth.GET("/payments", c.Payment.List)
	auth.GET("/payments/:id", c.Payment.Detail)
}
