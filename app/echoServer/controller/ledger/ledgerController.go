package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/app/echoServer/jwtx"
	ledgersvc "github.com/wixieee/BookStore/service/ledger"
)

type Controller struct {
	Svc ledgersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type DepositReq struct {
	Amount string `json:"amount" validate:"required"`
}

// POST /v1/balance/deposits
func (h *Controller) Deposit(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req DepositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid amount"})
	}

	newBal, err := h.Svc.Deposit(c.Request().Context(), email, amount)
	if err != nil {
		switch ledgersvc.Code(err) {
		case ledgersvc.ErrClientNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
		case ledgersvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		default:
			h.Log.Error("deposit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"balance": newBal})
}

// GET /v1/balance/ledger
func (h *Controller) Entries(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.Entries(c.Request().Context(), email)
	if err != nil {
		if ledgersvc.Code(err) == ledgersvc.ErrClientNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "client not found"})
		}
		h.Log.Error("ledger entries", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
