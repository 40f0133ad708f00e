// Package main bookstore API.
//
// @title           BookStore API
// @version         1.0
// @description     Online bookstore: catalog, cart, checkout against a client balance, employee management.
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

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/wixieee/BookStore/app/echoServer"
	authctrl "github.com/wixieee/BookStore/app/echoServer/controller/auth"
	bookctrl "github.com/wixieee/BookStore/app/echoServer/controller/book"
	cartctrl "github.com/wixieee/BookStore/app/echoServer/controller/cart"
	clientctrl "github.com/wixieee/BookStore/app/echoServer/controller/client"
	employeectrl "github.com/wixieee/BookStore/app/echoServer/controller/employee"
	ledgerctrl "github.com/wixieee/BookStore/app/echoServer/controller/ledger"
	orderctrl "github.com/wixieee/BookStore/app/echoServer/controller/order"
	"github.com/wixieee/BookStore/app/echoServer/validation"
	"github.com/wixieee/BookStore/config"
	"github.com/wixieee/BookStore/events"
	bookrepo "github.com/wixieee/BookStore/repository/book"
	cartrepo "github.com/wixieee/BookStore/repository/cart"
	ledgerrepo "github.com/wixieee/BookStore/repository/ledger"
	orderrepo "github.com/wixieee/BookStore/repository/order"
	userrepo "github.com/wixieee/BookStore/repository/user"
	authsvc "github.com/wixieee/BookStore/service/auth"
	booksvc "github.com/wixieee/BookStore/service/book"
	cartsvc "github.com/wixieee/BookStore/service/cart"
	clientsvc "github.com/wixieee/BookStore/service/client"
	employeesvc "github.com/wixieee/BookStore/service/employee"
	ledgersvc "github.com/wixieee/BookStore/service/ledger"
	ordersvc "github.com/wixieee/BookStore/service/order"
	"github.com/wixieee/BookStore/util/database"
)

func main() {
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// DB: *sql.DB over pgx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := cartrepo.New(db)
	or := orderrepo.New(db)
	lr := ledgerrepo.New(db)

	// events
	var pub ordersvc.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		p := events.NewProducer(cfg.KafkaBrokers, log)
		defer p.Close()
		pub = p
	}

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.JWTTTLHours)
	bs := booksvc.New(br)
	cs := cartsvc.New(db, ur, br, cr)
	ords := ordersvc.New(db, ur, cr, or, lr, pub, log)
	cls := clientsvc.New(ur)
	es := employeesvc.New(ur)
	ls := ledgersvc.New(db, ur, lr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	cartC := &cartctrl.Controller{Svc: cs, V: v, Log: log}
	orderC := &orderctrl.Controller{Svc: ords, V: v, Log: log}
	clientC := &clientctrl.Controller{Svc: cls, V: v, Log: log}
	employeeC := &employeectrl.Controller{Svc: es, V: v, Log: log}
	ledgerC := &ledgerctrl.Controller{Svc: ls, V: v, Log: log}

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
		Auth:     authC,
		Book:     bookC,
		Cart:     cartC,
		Order:    orderC,
		Client:   clientC,
		Employee: employeeC,
		Ledger:   ledgerC,

		JWTSecret: cfg.JWTSecret,
	})

	log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
