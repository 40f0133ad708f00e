package ledgersvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

type ErrCode string

const (
	ErrClientNotFound ErrCode = "CLIENT_NOT_FOUND"
	ErrBadInput       ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type UserRepo interface {
	LockClient(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error)
	ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
}

type LedgerRepo interface {
	Credit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, entryType model.EntryType, orderID *int64) (decimal.Decimal, error)
	Entries(ctx context.Context, clientID int64) ([]model.BalanceEntry, error)
}

type Service interface {
	// Deposit credits the client balance directly. Order debits and
	// refunds go through the order service, never through here.
	Deposit(ctx context.Context, clientEmail string, amount decimal.Decimal) (decimal.Decimal, error)
	Entries(ctx context.Context, clientEmail string) ([]model.BalanceEntry, error)
}

type service struct {
	db     *sql.DB
	users  UserRepo
	ledger LedgerRepo
}

func New(db *sql.DB, users UserRepo, ledger LedgerRepo) Service {
	return &service{db: db, users: users, ledger: ledger}
}

func (s *service) Deposit(ctx context.Context, clientEmail string, amount decimal.Decimal) (newBal decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, makeErr(ErrBadInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	clientID, _, err := s.users.LockClient(ctx, tx, clientEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, makeErr(ErrClientNotFound)
		}
		return decimal.Zero, err
	}

	newBal, err = s.ledger.Credit(ctx, tx, clientID, amount, model.EntryDeposit, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (s *service) Entries(ctx context.Context, clientEmail string) ([]model.BalanceEntry, error) {
	client, err := s.users.ByEmailAndRole(ctx, clientEmail, model.RoleClient)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrClientNotFound)
		}
		return nil, err
	}
	return s.ledger.Entries(ctx, client.ID)
}
