// model/order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "PROCESSING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderCanceled   OrderStatus = "CANCELED"
)

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderConfirmed || s == OrderCanceled
}

// OrderLine is an immutable snapshot of a cart line captured at
// checkout: book name and unit price are copied, not referenced.
type OrderLine struct {
	ID        int64           `json:"id"`
	BookName  string          `json:"book_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is a permanent receipt. Only Employee and Status change after
// creation, and only through the order service transitions.
type Order struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	ClientEmail   string          `json:"client_email"`
	EmployeeID    *int64          `json:"employee_id,omitempty"`
	EmployeeEmail *string         `json:"employee_email,omitempty"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
