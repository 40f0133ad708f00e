// model/ledger.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryOrderCharge EntryType = "ORDER_CHARGE"
	EntryOrderRefund EntryType = "ORDER_REFUND"
	EntryDeposit     EntryType = "DEPOSIT"
)

// BalanceEntry records one balance mutation. BalanceAfter mirrors the
// running users.balance value at the time the entry was written.
type BalanceEntry struct {
	ID           int64           `json:"id"`
	ClientID     int64           `json:"client_id"`
	EntryType    EntryType       `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OrderID      *int64          `json:"order_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
