package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/events"
	"github.com/wixieee/BookStore/model"
	ledgerrepo "github.com/wixieee/BookStore/repository/ledger"
	orderrepo "github.com/wixieee/BookStore/repository/order"
)

// errors used by controllers

type ErrCode string

const (
	ErrClientNotFound   ErrCode = "CLIENT_NOT_FOUND"
	ErrCartNotFound     ErrCode = "CART_NOT_FOUND"
	ErrOrderNotFound    ErrCode = "ORDER_NOT_FOUND"
	ErrEmployeeNotFound ErrCode = "EMPLOYEE_NOT_FOUND"
	ErrEmptyCart        ErrCode = "EMPTY_CART"
	ErrInsufficient     ErrCode = "INSUFFICIENT_FUNDS"
	ErrInvalidState     ErrCode = "INVALID_STATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// repository surface the engine needs

type UserRepo interface {
	LockClient(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error)
	ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
}

type CartRepo interface {
	LockByClient(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error)
	LinesTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error)
	Clear(ctx context.Context, tx *sql.Tx, cartID int64) error
}

// OrderTxView = repository shape
type OrderTxView = orderrepo.TxView

type OrderRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error
	LockForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error)
	SetTerminal(ctx context.Context, tx *sql.Tx, orderID, employeeID int64, status model.OrderStatus) error
	ByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error)
	ListByStatus(ctx context.Context, status model.OrderStatus, search string, page model.PageRequest) (model.Page[model.Order], error)
}

type LedgerRepo interface {
	Debit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, orderID *int64) (decimal.Decimal, error)
	Credit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, entryType model.EntryType, orderID *int64) (decimal.Decimal, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev events.OrderEvent)
}

type Service interface {
	// Place converts the client's cart into a PROCESSING order,
	// debiting the balance. Nothing mutates on any failure path.
	Place(ctx context.Context, clientEmail string) (*model.Order, error)

	// Confirm marks a PROCESSING order CONFIRMED. No balance effect.
	Confirm(ctx context.Context, orderID int64, employeeEmail string) error

	// Decline marks a PROCESSING order CANCELED and refunds the
	// order total to the client.
	Decline(ctx context.Context, orderID int64, employeeEmail string) error

	Get(ctx context.Context, orderID int64) (*model.Order, error)
	ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error)
	ListPending(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Order], error)
}

// ----- Service implementation -----

type service struct {
	db     *sql.DB
	users  UserRepo
	carts  CartRepo
	orders OrderRepo
	ledger LedgerRepo
	pub    Publisher
	log    *slog.Logger
}

func New(db *sql.DB, users UserRepo, carts CartRepo, orders OrderRepo, ledger LedgerRepo, pub Publisher, log *slog.Logger) Service {
	return &service{db: db, users: users, carts: carts, orders: orders, ledger: ledger, pub: pub, log: log}
}

func (s *service) Place(ctx context.Context, clientEmail string) (o *model.Order, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The client row lock serializes concurrent checkouts for the
	// same client; the funds check below can never see a stale balance.
	clientID, balance, err := s.users.LockClient(ctx, tx, clientEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrClientNotFound)
		}
		return nil, err
	}

	cartID, err := s.carts.LockByClient(ctx, tx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrCartNotFound)
		}
		return nil, err
	}

	cartLines, err := s.carts.LinesTx(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, makeErr(ErrEmptyCart)
	}

	lines := make([]model.OrderLine, 0, len(cartLines))
	total := decimal.Zero
	for _, cl := range cartLines {
		lines = append(lines, model.OrderLine{
			BookName:  cl.BookName,
			UnitPrice: cl.UnitPrice,
			Quantity:  cl.Quantity,
		})
		total = total.Add(cl.Subtotal())
	}

	if total.GreaterThan(balance) {
		return nil, makeErr(ErrInsufficient)
	}

	order := &model.Order{
		ClientID:    clientID,
		ClientEmail: clientEmail,
		Lines:       lines,
		Total:       total,
		Status:      model.OrderProcessing,
	}
	if err = s.orders.Insert(ctx, tx, order); err != nil {
		return nil, err
	}

	// Guarded debit; the explicit check above already passed, so this
	// only trips if something else mutated the locked row, which the
	// lock rules out.
	if _, err = s.ledger.Debit(ctx, tx, clientID, total, &order.ID); err != nil {
		if errors.Is(err, ledgerrepo.ErrInsufficient) {
			return nil, makeErr(ErrInsufficient)
		}
		return nil, err
	}

	if err = s.carts.Clear(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderPlaced, order.ID, clientEmail, total)
	return order, nil
}

func (s *service) Confirm(ctx context.Context, orderID int64, employeeEmail string) error {
	clientEmail, total, err := s.transition(ctx, orderID, employeeEmail, model.OrderConfirmed)
	if err != nil {
		return err
	}
	s.publish(ctx, events.OrderConfirmed, orderID, clientEmail, total)
	return nil
}

func (s *service) Decline(ctx context.Context, orderID int64, employeeEmail string) error {
	clientEmail, total, err := s.transition(ctx, orderID, employeeEmail, model.OrderCanceled)
	if err != nil {
		return err
	}
	s.publish(ctx, events.OrderDeclined, orderID, clientEmail, total)
	return nil
}

func (s *service) transition(ctx context.Context, orderID int64, employeeEmail string, target model.OrderStatus) (clientEmail string, total decimal.Decimal, err error) {
	emp, err := s.users.ByEmailAndRole(ctx, employeeEmail, model.RoleEmployee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", decimal.Zero, makeErr(ErrEmployeeNotFound)
		}
		return "", decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", decimal.Zero, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	view, err := s.orders.LockForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", decimal.Zero, makeErr(ErrOrderNotFound)
		}
		return "", decimal.Zero, err
	}
	if view.Status.Terminal() {
		return "", decimal.Zero, makeErr(ErrInvalidState)
	}

	if target == model.OrderCanceled {
		// Compensating credit: the full order total goes back to the
		// client, uncapped, regardless of their current balance.
		if _, err = s.ledger.Credit(ctx, tx, view.ClientID, view.Total, model.EntryOrderRefund, &orderID); err != nil {
			return "", decimal.Zero, err
		}
	}

	if err = s.orders.SetTerminal(ctx, tx, orderID, emp.ID, target); err != nil {
		return "", decimal.Zero, err
	}
	if err = tx.Commit(); err != nil {
		return "", decimal.Zero, err
	}
	return view.ClientEmail, view.Total, nil
}

func (s *service) publish(ctx context.Context, typ events.EventType, orderID int64, clientEmail string, total decimal.Decimal) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, events.OrderEvent{
		Type:        typ,
		OrderID:     orderID,
		ClientEmail: clientEmail,
		Total:       total.String(),
		At:          time.Now().UTC(),
	})
}

func (s *service) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	o, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrOrderNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (s *service) ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return s.orders.ListByClient(ctx, clientEmail, search, page)
}

func (s *service) ListPending(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return s.orders.ListByStatus(ctx, model.OrderProcessing, search, page)
}
