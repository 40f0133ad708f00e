// model/cart.go
package model

import "github.com/shopspring/decimal"

// CartLine is one (book, quantity) pair in a client's working cart.
// Book fields are joined in for display; the line itself stores only
// the book reference and quantity.
type CartLine struct {
	ID         int64           `json:"id"`
	BookID     int64           `json:"book_id"`
	BookName   string          `json:"book_name"`
	BookAuthor string          `json:"book_author"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the mutable working state of one client, created lazily on
// first access. At most one line per distinct book.
type Cart struct {
	ID       int64      `json:"id"`
	ClientID int64      `json:"client_id"`
	Lines    []CartLine `json:"lines"`
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
