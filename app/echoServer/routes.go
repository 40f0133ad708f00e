package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/app/echoServer/controller/auth"
	"github.com/wixieee/BookStore/app/echoServer/controller/book"
	"github.com/wixieee/BookStore/app/echoServer/controller/cart"
	"github.com/wixieee/BookStore/app/echoServer/controller/client"
	"github.com/wixieee/BookStore/app/echoServer/controller/employee"
	"github.com/wixieee/BookStore/app/echoServer/controller/ledger"
	"github.com/wixieee/BookStore/app/echoServer/controller/order"
)

type C struct {
	Auth     *auth.Controller
	Book     *book.Controller
	Cart     *cart.Controller
	Order    *order.Controller
	Client   *client.Controller
	Employee *employee.Controller
	Ledger   *ledger.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))

	// Cart
	authed.GET("/cart", c.Cart.Get)
	authed.POST("/cart/lines", c.Cart.AddBook)
	authed.PUT("/cart/lines/:id", c.Cart.UpdateQuantity)
	authed.DELETE("/cart/lines/:id", c.Cart.RemoveLine)
	authed.DELETE("/cart", c.Cart.Clear)

	// Orders
	authed.POST("/orders", c.Order.Place)
	authed.GET("/orders/my", c.Order.My)
	authed.GET("/orders/:id", c.Order.Detail)

	// Balance
	authed.POST("/balance/deposits", c.Ledger.Deposit)
	authed.GET("/balance/ledger", c.Ledger.Entries)

	// Own profile
	authed.GET("/profile", c.Client.Profile)
	authed.PUT("/profile", c.Client.UpdateProfile)

	// Employee side
	mgmt := authed.Group("", EmployeeOnly())
	mgmt.GET("/orders/pending", c.Order.Pending)
	mgmt.POST("/orders/:id/confirm", c.Order.Confirm)
	mgmt.POST("/orders/:id/decline", c.Order.Decline)

	mgmt.POST("/books", c.Book.Create)
	mgmt.PUT("/books/:id", c.Book.Update)
	mgmt.DELETE("/books/:id", c.Book.Delete)

	mgmt.GET("/clients", c.Client.List)
	mgmt.GET("/clients/:email", c.Client.Detail)
	mgmt.PUT("/clients/:email", c.Client.Update)
	mgmt.PUT("/clients/:email/block", c.Client.SetBlocked)
	mgmt.DELETE("/clients/:email", c.Client.Delete)

	mgmt.GET("/employees", c.Employee.List)
	mgmt.GET("/employees/:email", c.Employee.Detail)
	mgmt.POST("/employees", c.Employee.Add)
	mgmt.PUT("/employees/:email", c.Employee.Update)
	mgmt.DELETE("/employees/:email", c.Employee.Delete)
}
