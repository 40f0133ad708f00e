package employee

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/wixieee/BookStore/app/echoServer/paging"
	employeesvc "github.com/wixieee/BookStore/service/employee"
)

type Controller struct {
	Svc employeesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type AddReq struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateReq struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

func parseBirthDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch employeesvc.Code(err) {
	case employeesvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "employee not found"})
	case employeesvc.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already taken"})
	case employeesvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	case employeesvc.ErrPasswordTooShort:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password must be at least 8 characters"})
	case employeesvc.ErrPasswordWhitespace:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password cannot contain whitespace"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/employees
func (h *Controller) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), c.QueryParam("search"), paging.FromQuery(c))
	if err != nil {
		return h.fail(c, "employee list", err)
	}
	return c.JSON(http.StatusOK, page)
}

// GET /v1/employees/:email
func (h *Controller) Detail(c echo.Context) error {
	u, err := h.Svc.ByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return h.fail(c, "employee detail", err)
	}
	return c.JSON(http.StatusOK, u)
}

// POST /v1/employees
func (h *Controller) Add(c echo.Context) error {
	var req AddReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := h.Svc.Add(c.Request().Context(), employeesvc.Add{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		Phone:     req.Phone,
		BirthDate: parseBirthDate(req.BirthDate),
	})
	if err != nil {
		return h.fail(c, "employee add", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// PUT /v1/employees/:email
func (h *Controller) Update(c echo.Context) error {
	var req UpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := h.Svc.Update(c.Request().Context(), c.Param("email"), employeesvc.Update{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		Phone:     req.Phone,
		BirthDate: parseBirthDate(req.BirthDate),
	})
	if err != nil {
		return h.fail(c, "employee update", err)
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /v1/employees/:email
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("email")); err != nil {
		return h.fail(c, "employee delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
