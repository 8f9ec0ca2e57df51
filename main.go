// Package main library borrowing API.
//
// @title           Library Borrowing API
// @version         1.0
// @description     Library service (books, borrowings, fines, payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bogdAAAn1/library-service/app/echoServer"
	authctrl "github.com/bogdAAAn1/library-service/app/echoServer/controller/auth"
	bookctrl "github.com/bogdAAAn1/library-service/app/echoServer/controller/book"
	borrowctrl "github.com/bogdAAAn1/library-service/app/echoServer/controller/borrowing"
	paymentctrl "github.com/bogdAAAn1/library-service/app/echoServer/controller/payment"
	"github.com/bogdAAAn1/library-service/app/echoServer/validation"
	"github.com/bogdAAAn1/library-service/config"
	"github.com/bogdAAAn1/library-service/notifier"
	bookrepo "github.com/bogdAAAn1/library-service/repository/book"
	borrowrepo "github.com/bogdAAAn1/library-service/repository/borrowing"
	paymentrepo "github.com/bogdAAAn1/library-service/repository/payment"
	striperepo "github.com/bogdAAAn1/library-service/repository/stripe"
	userrepo "github.com/bogdAAAn1/library-service/repository/user"
	authsvc "github.com/bogdAAAn1/library-service/service/auth"
	booksvc "github.com/bogdAAAn1/library-service/service/book"
	borrowsvc "github.com/bogdAAAn1/library-service/service/borrowing"
	paymentsvc "github.com/bogdAAAn1/library-service/service/payment"
	"github.com/bogdAAAn1/library-service/util/database"
)

const overdueScanInterval = 24 * time.Hour

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// notifications
	var dispatch notifier.Dispatcher = notifier.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		dispatch = notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	}
	dispatch = notifier.NewAsync(dispatch, log)

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)
	pr := paymentrepo.New(db)
	provider := striperepo.NewHTTP(cfg.StripeSecretKey)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br, dispatch)
	rs := borrowsvc.New(db, br, rr, pr, provider, dispatch, cfg.PublicBaseURL)
	ps := paymentsvc.New(db, pr, dispatch)

	// overdue reminders
	borrowsvc.NewOverdueWorker(rr, dispatch, log).Start(ctx, overdueScanInterval)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrowing: borrowC,
		Payment:   paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
