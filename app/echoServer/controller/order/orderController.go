package order

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/app/echoServer/jwtx"
	"github.com/wixieee/BookStore/app/echoServer/paging"
	ordersvc "github.com/wixieee/BookStore/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch ordersvc.Code(err) {
	case ordersvc.ErrClientNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
	case ordersvc.ErrCartNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "cart not found"})
	case ordersvc.ErrOrderNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	case ordersvc.ErrEmployeeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "employee not found"})
	case ordersvc.ErrEmptyCart:
		return c.JSON(http.StatusConflict, echo.Map{"message": "cart is empty"})
	case ordersvc.ErrInsufficient:
		return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient funds"})
	case ordersvc.ErrInvalidState:
		return c.JSON(http.StatusConflict, echo.Map{"message": "order already finalized"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/orders  (checkout)
func (h *Controller) Place(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	o, err := h.Svc.Place(c.Request().Context(), email)
	if err != nil {
		return h.fail(c, "order place", err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GET /v1/orders/my
func (h *Controller) My(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	page, err := h.Svc.ListByClient(c.Request().Context(), email, c.QueryParam("search"), paging.FromQuery(c))
	if err != nil {
		return h.fail(c, "order my", err)
	}
	return c.JSON(http.StatusOK, page)
}

// GET /v1/orders/pending  (employee)
func (h *Controller) Pending(c echo.Context) error {
	page, err := h.Svc.ListPending(c.Request().Context(), c.QueryParam("search"), paging.FromQuery(c))
	if err != nil {
		return h.fail(c, "order pending", err)
	}
	return c.JSON(http.StatusOK, page)
}

// GET /v1/orders/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	o, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "order detail", err)
	}

	// Clients can only see their own orders.
	role, _ := jwtx.RoleFromContext(c)
	if role != "EMPLOYEE" {
		email, _ := jwtx.EmailFromContext(c)
		if o.ClientEmail != email {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, o)
}

// POST /v1/orders/:id/confirm  (employee)
func (h *Controller) Confirm(c echo.Context) error {
	return h.transition(c, "order confirm", h.Svc.Confirm)
}

// POST /v1/orders/:id/decline  (employee)
func (h *Controller) Decline(c echo.Context) error {
	return h.transition(c, "order decline", h.Svc.Decline)
}

func (h *Controller) transition(c echo.Context, op string, fn func(ctx context.Context, orderID int64, employeeEmail string) error) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := fn(c.Request().Context(), id, email); err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
