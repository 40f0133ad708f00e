package cart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/app/echoServer/jwtx"
	cartsvc "github.com/wixieee/BookStore/service/cart"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch cartsvc.Code(err) {
	case cartsvc.ErrClientNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
	case cartsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case cartsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/cart
func (h *Controller) Get(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	cart, err := h.Svc.Get(c.Request().Context(), email)
	if err != nil {
		return h.fail(c, "cart get", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cart":  cart,
		"total": cart.Total(),
	})
}

// POST /v1/cart/lines
func (h *Controller) AddBook(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req AddBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if err := h.Svc.AddBook(c.Request().Context(), email, req.BookName, req.BookAuthor, req.Quantity); err != nil {
		return h.fail(c, "cart add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added"})
}

// PUT /v1/cart/lines/:id
func (h *Controller) UpdateQuantity(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lineID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetQuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}

	if err := h.Svc.UpdateQuantity(c.Request().Context(), email, lineID, req.Quantity); err != nil {
		return h.fail(c, "cart update qty", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// DELETE /v1/cart/lines/:id
func (h *Controller) RemoveLine(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lineID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.RemoveLine(c.Request().Context(), email, lineID); err != nil {
		return h.fail(c, "cart remove line", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// DELETE /v1/cart
func (h *Controller) Clear(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Clear(c.Request().Context(), email); err != nil {
		return h.fail(c, "cart clear", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cleared"})
}
