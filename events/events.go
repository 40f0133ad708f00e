package events

import "time"

type EventType string

const (
	OrderPlaced    EventType = "order.placed"
	OrderConfirmed EventType = "order.confirmed"
	OrderDeclined  EventType = "order.declined"
)

// OrderEvent is the lifecycle message published after a checkout or a
// terminal transition commits. Total is the decimal string form.
type OrderEvent struct {
	Type        EventType `json:"type"`
	OrderID     int64     `json:"order_id"`
	ClientEmail string    `json:"client_email"`
	Total       string    `json:"total"`
	At          time.Time `json:"at"`
}
