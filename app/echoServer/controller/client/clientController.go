package client

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/app/echoServer/jwtx"
	"github.com/wixieee/BookStore/app/echoServer/paging"
	clientsvc "github.com/wixieee/BookStore/service/client"
)

type Controller struct {
	Svc clientsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpdateReq struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type BlockReq struct {
	Blocked bool `json:"blocked"`
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch clientsvc.Code(err) {
	case clientsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
	case clientsvc.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already taken"})
	case clientsvc.ErrPasswordTooShort:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password must be at least 8 characters"})
	case clientsvc.ErrPasswordWhitespace:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password cannot contain whitespace"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/profile  (own profile, any client)
func (h *Controller) Profile(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := h.Svc.ByEmail(c.Request().Context(), email)
	if err != nil {
		return h.fail(c, "profile", err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/profile
func (h *Controller) UpdateProfile(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	return h.update(c, email)
}

// GET /v1/clients  (employee)
func (h *Controller) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), c.QueryParam("search"), paging.FromQuery(c))
	if err != nil {
		return h.fail(c, "client list", err)
	}
	return c.JSON(http.StatusOK, page)
}

// GET /v1/clients/:email  (employee)
func (h *Controller) Detail(c echo.Context) error {
	u, err := h.Svc.ByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return h.fail(c, "client detail", err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/clients/:email  (employee)
func (h *Controller) Update(c echo.Context) error {
	return h.update(c, c.Param("email"))
}

func (h *Controller) update(c echo.Context, email string) error {
	var req UpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := h.Svc.Update(c.Request().Context(), email, clientsvc.Update{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return h.fail(c, "client update", err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/clients/:email/block  (employee)
func (h *Controller) SetBlocked(c echo.Context) error {
	var req BlockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.Svc.SetBlocked(c.Request().Context(), c.Param("email"), req.Blocked); err != nil {
		return h.fail(c, "client block", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// DELETE /v1/clients/:email  (employee)
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("email")); err != nil {
		return h.fail(c, "client delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
