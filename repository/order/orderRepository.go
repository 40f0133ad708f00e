package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

// TxView is what a confirm/decline transition needs from the locked
// order row.
type TxView struct {
	ClientID    int64
	ClientEmail string
	Total       decimal.Decimal
	Status      model.OrderStatus
}

type Repo interface {
	// Insert writes the order and its line snapshots inside tx and
	// fills in the generated id and timestamp.
	Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error

	// LockForUpdate loads the fields a transition needs, with the
	// order row locked.
	LockForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (TxView, error)

	// SetTerminal records the deciding employee and the terminal status.
	SetTerminal(ctx context.Context, tx *sql.Tx, orderID, employeeID int64, status model.OrderStatus) error

	ByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error)
	ListByStatus(ctx context.Context, status model.OrderStatus, search string, page model.PageRequest) (model.Page[model.Order], error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `
		INSERT INTO orders (client_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, q, o.ClientID, o.Total, o.Status).Scan(&o.ID, &o.CreatedAt); err != nil {
		return err
	}
	const ql = `
		INSERT INTO order_lines (order_id, book_name, unit_price, quantity)
		VALUES ($1,$2,$3,$4)
		RETURNING id`
	for i := range o.Lines {
		l := &o.Lines[i]
		if err := tx.QueryRowContext(ctx, ql, o.ID, l.BookName, l.UnitPrice, l.Quantity).Scan(&l.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) LockForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (TxView, error) {
	// FOR UPDATE OF o: only the order row is locked, not the joined
	// user row. The client row lock, when needed, is taken by the
	// ledger's guarded update.
	const q = `
		SELECT o.client_id, c.email, o.total, o.status
		FROM orders o
		JOIN users c ON c.id = o.client_id
		WHERE o.id = $1
		FOR UPDATE OF o`
	var v TxView
	err := tx.QueryRowContext(ctx, q, orderID).Scan(&v.ClientID, &v.ClientEmail, &v.Total, &v.Status)
	return v, err
}

func (r *repo) SetTerminal(ctx context.Context, tx *sql.Tx, orderID, employeeID int64, status model.OrderStatus) error {
	const q = `UPDATE orders SET employee_id=$2, status=$3 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, orderID, employeeID, status)
	return err
}

const orderCols = `
	o.id, o.client_id, c.email, o.employee_id, e.email, o.total, o.status, o.created_at`

const orderFrom = `
	FROM orders o
	JOIN users c ON c.id = o.client_id
	LEFT JOIN users e ON e.id = o.employee_id`

func scanOrder(rows interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := rows.Scan(&o.ID, &o.ClientID, &o.ClientEmail, &o.EmployeeID, &o.EmployeeEmail,
		&o.Total, &o.Status, &o.CreatedAt)
	return o, err
}

func (r *repo) ByID(ctx context.Context, orderID int64) (*model.Order, error) {
	q := `SELECT` + orderCols + orderFrom + ` WHERE o.id=$1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		return nil, err
	}
	byOrder, err := r.loadLines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = byOrder[o.ID]
	return &o, nil
}

func (r *repo) loadLines(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLine, error) {
	out := make(map[int64][]model.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	ph := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(`
		SELECT order_id, id, book_name, unit_price, quantity
		FROM order_lines
		WHERE order_id IN (%s)
		ORDER BY order_id, id`, strings.Join(ph, ","))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var l model.OrderLine
		if err := rows.Scan(&orderID, &l.ID, &l.BookName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}

var orderSortCols = map[string]string{
	"date":   "o.created_at",
	"price":  "o.total",
	"status": "o.status",
	"id":     "o.id",
}

// searchClause matches the substring filter against the order id, the
// client email and any snapshotted book name on the order.
const searchClause = `
	(CAST(o.id AS TEXT) LIKE $%d
	 OR c.email ILIKE $%d
	 OR EXISTS (
		SELECT 1 FROM order_lines ol
		WHERE ol.order_id = o.id AND ol.book_name ILIKE $%d))`

func (r *repo) list(ctx context.Context, where string, args []any, search string, page model.PageRequest) (model.Page[model.Order], error) {
	page = page.Normalize()
	out := model.Page[model.Order]{Page: page.Page, Size: page.Size}

	if s := strings.TrimSpace(search); s != "" {
		n := len(args) + 1
		where += ` AND ` + fmt.Sprintf(searchClause, n, n, n)
		args = append(args, "%"+s+"%")
	}

	countQ := `SELECT COUNT(*)` + orderFrom + ` WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&out.Total); err != nil {
		return out, err
	}

	col, ok := orderSortCols[page.Sort]
	if !ok {
		col = "o.created_at"
		page.Desc = true
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY %s %s, o.id %s LIMIT %d OFFSET %d`,
		orderCols, orderFrom, where, col, dir, dir, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	byOrder, err := r.loadLines(ctx, ids)
	if err != nil {
		return out, err
	}
	for i := range out.Items {
		out.Items[i].Lines = byOrder[out.Items[i].ID]
	}
	return out, nil
}

func (r *repo) ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return r.list(ctx, `c.email = lower($1)`, []any{clientEmail}, search, page)
}

func (r *repo) ListByStatus(ctx context.Context, status model.OrderStatus, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return r.list(ctx, `o.status = $1`, []any{status}, search, page)
}
