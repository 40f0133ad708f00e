package cartrepo

import (
	"context"
	"database/sql"

	"github.com/wixieee/BookStore/model"
)

type Repo interface {
	// FindByClient returns the cart id without locking, or sql.ErrNoRows.
	FindByClient(ctx context.Context, clientID int64) (int64, error)
	Create(ctx context.Context, clientID int64) (int64, error)

	// LockByClient takes a row lock on the cart inside tx. Every cart
	// mutation and the checkout path lock before touching lines.
	LockByClient(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error)

	Lines(ctx context.Context, cartID int64) ([]model.CartLine, error)
	LinesTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error)

	AddLine(ctx context.Context, tx *sql.Tx, cartID, bookID int64, qty int) error
	SetQuantity(ctx context.Context, tx *sql.Tx, cartID, lineID int64, qty int) error
	RemoveLine(ctx context.Context, tx *sql.Tx, cartID, lineID int64) error
	Clear(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) FindByClient(ctx context.Context, clientID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE client_id=$1`, clientID).Scan(&id)
	return id, err
}

func (r *repo) Create(ctx context.Context, clientID int64) (int64, error) {
	// Racing creators land on the same row.
	const q = `
		INSERT INTO carts (client_id) VALUES ($1)
		ON CONFLICT (client_id) DO UPDATE SET client_id = EXCLUDED.client_id
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, clientID).Scan(&id)
	return id, err
}

func (r *repo) LockByClient(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE client_id=$1 FOR UPDATE`, clientID).Scan(&id)
	return id, err
}

const lineQuery = `
	SELECT cl.id, cl.book_id, b.name, b.author, b.price, cl.quantity
	FROM cart_lines cl
	JOIN books b ON b.id = cl.book_id
	WHERE cl.cart_id = $1
	ORDER BY cl.id`

type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func lines(ctx context.Context, q rowQuerier, cartID int64) ([]model.CartLine, error) {
	rows, err := q.QueryContext(ctx, lineQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.BookID, &l.BookName, &l.BookAuthor, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) Lines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	return lines(ctx, r.db, cartID)
}

func (r *repo) LinesTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error) {
	return lines(ctx, tx, cartID)
}

func (r *repo) AddLine(ctx context.Context, tx *sql.Tx, cartID, bookID int64, qty int) error {
	// One line per distinct book; duplicate adds merge quantities.
	const q = `
		INSERT INTO cart_lines (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`
	_, err := tx.ExecContext(ctx, q, cartID, bookID, qty)
	return err
}

func (r *repo) SetQuantity(ctx context.Context, tx *sql.Tx, cartID, lineID int64, qty int) error {
	const q = `UPDATE cart_lines SET quantity=$3 WHERE cart_id=$1 AND id=$2`
	_, err := tx.ExecContext(ctx, q, cartID, lineID, qty)
	return err
}

func (r *repo) RemoveLine(ctx context.Context, tx *sql.Tx, cartID, lineID int64) error {
	const q = `DELETE FROM cart_lines WHERE cart_id=$1 AND id=$2`
	_, err := tx.ExecContext(ctx, q, cartID, lineID)
	return err
}

func (r *repo) Clear(ctx context.Context, tx *sql.Tx, cartID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id=$1`, cartID)
	return err
}
