package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

// ErrInsufficient is returned by Debit when the guarded update would
// drive the balance negative. The balance row is left untouched.
var ErrInsufficient = errors.New("insufficient balance")

type Repo interface {
	// Debit subtracts amount from the client balance and appends an
	// ORDER_CHARGE entry. The UPDATE is guarded so the balance can
	// never go negative.
	Debit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, orderID *int64) (decimal.Decimal, error)

	// Credit adds amount to the client balance and appends an entry of
	// the given type. No upper bound.
	Credit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, entryType model.EntryType, orderID *int64) (decimal.Decimal, error)

	Entries(ctx context.Context, clientID int64) ([]model.BalanceEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Debit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, orderID *int64) (decimal.Decimal, error) {
	const q = `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1 AND role = 'CLIENT' AND balance >= $2
		RETURNING balance`
	var newBal decimal.Decimal
	err := tx.QueryRowContext(ctx, q, clientID, amount).Scan(&newBal)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrInsufficient
	}
	if err != nil {
		return decimal.Zero, err
	}
	if err := r.insertEntry(ctx, tx, clientID, model.EntryOrderCharge, amount.Neg(), newBal, orderID); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (r *repo) Credit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, entryType model.EntryType, orderID *int64) (decimal.Decimal, error) {
	const q = `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1 AND role = 'CLIENT'
		RETURNING balance`
	var newBal decimal.Decimal
	if err := tx.QueryRowContext(ctx, q, clientID, amount).Scan(&newBal); err != nil {
		return decimal.Zero, err
	}
	if err := r.insertEntry(ctx, tx, clientID, entryType, amount, newBal, orderID); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (r *repo) insertEntry(ctx context.Context, tx *sql.Tx, clientID int64, entryType model.EntryType, amount, balanceAfter decimal.Decimal, orderID *int64) error {
	const q = `
		INSERT INTO balance_entries (client_id, entry_type, amount, balance_after, order_id)
		VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.ExecContext(ctx, q, clientID, entryType, amount, balanceAfter, orderID)
	return err
}

func (r *repo) Entries(ctx context.Context, clientID int64) ([]model.BalanceEntry, error) {
	const q = `
		SELECT id, client_id, entry_type, amount, balance_after, order_id, created_at
		FROM balance_entries
		WHERE client_id=$1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BalanceEntry
	for rows.Next() {
		var e model.BalanceEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.OrderID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
