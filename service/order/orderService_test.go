package ordersvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wixieee/BookStore/events"
	"github.com/wixieee/BookStore/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- mocks ---

type mockUsers struct {
	lockClientFn     func(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error)
	byEmailAndRoleFn func(ctx context.Context, email string, role model.Role) (*model.User, error)
}

var _ UserRepo = (*mockUsers)(nil)

func (m *mockUsers) LockClient(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error) {
	if m.lockClientFn == nil {
		return 0, decimal.Zero, sql.ErrNoRows
	}
	return m.lockClientFn(ctx, tx, email)
}

func (m *mockUsers) ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if m.byEmailAndRoleFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailAndRoleFn(ctx, email, role)
}

type mockCarts struct {
	lockByClientFn func(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error)
	linesTxFn      func(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error)
	cleared        []int64
}

var _ CartRepo = (*mockCarts)(nil)

func (m *mockCarts) LockByClient(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error) {
	if m.lockByClientFn == nil {
		return 0, sql.ErrNoRows
	}
	return m.lockByClientFn(ctx, tx, clientID)
}

func (m *mockCarts) LinesTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error) {
	if m.linesTxFn == nil {
		return nil, nil
	}
	return m.linesTxFn(ctx, tx, cartID)
}

func (m *mockCarts) Clear(ctx context.Context, tx *sql.Tx, cartID int64) error {
	m.cleared = append(m.cleared, cartID)
	return nil
}

type terminalCall struct {
	orderID, employeeID int64
	status              model.OrderStatus
}

type mockOrders struct {
	inserted        []*model.Order
	lockForUpdateFn func(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error)
	terminals       []terminalCall
}

var _ OrderRepo = (*mockOrders)(nil)

func (m *mockOrders) Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	o.ID = int64(len(m.inserted)) + 1
	m.inserted = append(m.inserted, o)
	return nil
}

func (m *mockOrders) LockForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error) {
	if m.lockForUpdateFn == nil {
		return OrderTxView{}, sql.ErrNoRows
	}
	return m.lockForUpdateFn(ctx, tx, orderID)
}

func (m *mockOrders) SetTerminal(ctx context.Context, tx *sql.Tx, orderID, employeeID int64, status model.OrderStatus) error {
	m.terminals = append(m.terminals, terminalCall{orderID, employeeID, status})
	return nil
}

func (m *mockOrders) ByID(ctx context.Context, orderID int64) (*model.Order, error) {
	return nil, sql.ErrNoRows
}

func (m *mockOrders) ListByClient(ctx context.Context, clientEmail, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return model.Page[model.Order]{}, nil
}

func (m *mockOrders) ListByStatus(ctx context.Context, status model.OrderStatus, search string, page model.PageRequest) (model.Page[model.Order], error) {
	return model.Page[model.Order]{}, nil
}

type ledgerCall struct {
	clientID int64
	amount   decimal.Decimal
}

// mockLedger keeps a live balance so multi-step tests can watch the
// money move.
type mockLedger struct {
	balance decimal.Decimal
	debits  []ledgerCall
	credits []ledgerCall
}

var _ LedgerRepo = (*mockLedger)(nil)

func (m *mockLedger) Debit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, orderID *int64) (decimal.Decimal, error) {
	m.balance = m.balance.Sub(amount)
	m.debits = append(m.debits, ledgerCall{clientID, amount})
	return m.balance, nil
}

func (m *mockLedger) Credit(ctx context.Context, tx *sql.Tx, clientID int64, amount decimal.Decimal, entryType model.EntryType, orderID *int64) (decimal.Decimal, error) {
	m.balance = m.balance.Add(amount)
	m.credits = append(m.credits, ledgerCall{clientID, amount})
	return m.balance, nil
}

type mockPub struct{ published []events.OrderEvent }

var _ Publisher = (*mockPub)(nil)

func (m *mockPub) Publish(ctx context.Context, ev events.OrderEvent) {
	m.published = append(m.published, ev)
}

// --- fixtures ---

func employee(id int64, email string) *model.User {
	return &model.User{ID: id, Email: email, Role: model.RoleEmployee}
}

func cartOf(lines ...model.CartLine) *mockCarts {
	return &mockCarts{
		lockByClientFn: func(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error) {
			return 11, nil
		},
		linesTxFn: func(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartLine, error) {
			return lines, nil
		},
	}
}

func clientWithBalance(t *testing.T, id int64, balance string) *mockUsers {
	bal := dec(t, balance)
	return &mockUsers{
		lockClientFn: func(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error) {
			return id, bal, nil
		},
	}
}

// --- tests ---

func TestPlace_Success(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := clientWithBalance(t, 7, "100.00")
	carts := cartOf(model.CartLine{
		ID: 1, BookID: 3, BookName: "Kobzar", BookAuthor: "Shevchenko",
		UnitPrice: dec(t, "30.00"), Quantity: 2,
	})
	orders := &mockOrders{}
	ledger := &mockLedger{balance: dec(t, "100.00")}
	pub := &mockPub{}

	svc := New(db, users, carts, orders, ledger, pub, nil)

	o, err := svc.Place(ctx, "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, o)
	require.Equal(t, model.OrderProcessing, o.Status)
	require.True(t, o.Total.Equal(dec(t, "60.00")), "total %s", o.Total)
	require.Len(t, o.Lines, 1)
	require.Equal(t, "Kobzar", o.Lines[0].BookName)
	require.Equal(t, 2, o.Lines[0].Quantity)
	require.True(t, o.Lines[0].UnitPrice.Equal(dec(t, "30.00")))

	require.Len(t, ledger.debits, 1)
	require.True(t, ledger.debits[0].amount.Equal(dec(t, "60.00")))
	require.True(t, ledger.balance.Equal(dec(t, "40.00")))
	require.Equal(t, []int64{11}, carts.cleared)

	require.Len(t, pub.published, 1)
	require.Equal(t, events.OrderPlaced, pub.published[0].Type)
	require.Equal(t, "reader@example.com", pub.published[0].ClientEmail)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	users := clientWithBalance(t, 7, "40.00")
	carts := cartOf(model.CartLine{
		ID: 1, BookID: 3, BookName: "Kobzar", UnitPrice: dec(t, "50.00"), Quantity: 1,
	})
	orders := &mockOrders{}
	ledger := &mockLedger{balance: dec(t, "40.00")}
	pub := &mockPub{}

	svc := New(db, users, carts, orders, ledger, pub, nil)

	_, err := svc.Place(ctx, "reader@example.com")
	require.Error(t, err)
	require.Equal(t, ErrInsufficient, Code(err))

	// nothing moved
	require.Empty(t, orders.inserted)
	require.Empty(t, ledger.debits)
	require.True(t, ledger.balance.Equal(dec(t, "40.00")))
	require.Empty(t, carts.cleared)
	require.Empty(t, pub.published)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_EmptyCart(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, clientWithBalance(t, 7, "100.00"), cartOf(), &mockOrders{}, &mockLedger{}, &mockPub{}, nil)

	_, err := svc.Place(ctx, "reader@example.com")
	require.Equal(t, ErrEmptyCart, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_ClientNotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, &mockUsers{}, &mockCarts{}, &mockOrders{}, &mockLedger{}, &mockPub{}, nil)

	_, err := svc.Place(ctx, "ghost@example.com")
	require.Equal(t, ErrClientNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_CartNotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, clientWithBalance(t, 7, "100.00"), &mockCarts{}, &mockOrders{}, &mockLedger{}, &mockPub{}, nil)

	_, err := svc.Place(ctx, "reader@example.com")
	require.Equal(t, ErrCartNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirm_NoBalanceEffect(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := &mockUsers{
		byEmailAndRoleFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			require.Equal(t, model.RoleEmployee, role)
			return employee(99, email), nil
		},
	}
	orders := &mockOrders{
		lockForUpdateFn: func(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error) {
			return OrderTxView{ClientID: 7, ClientEmail: "reader@example.com", Total: dec(t, "60.00"), Status: model.OrderProcessing}, nil
		},
	}
	ledger := &mockLedger{balance: dec(t, "40.00")}
	pub := &mockPub{}

	svc := New(db, users, &mockCarts{}, orders, ledger, pub, nil)

	require.NoError(t, svc.Confirm(ctx, 5, "clerk@example.com"))

	require.Equal(t, []terminalCall{{5, 99, model.OrderConfirmed}}, orders.terminals)
	require.Empty(t, ledger.credits)
	require.True(t, ledger.balance.Equal(dec(t, "40.00")))

	require.Len(t, pub.published, 1)
	require.Equal(t, events.OrderConfirmed, pub.published[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecline_RefundsFullTotal(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := &mockUsers{
		byEmailAndRoleFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return employee(99, email), nil
		},
	}
	orders := &mockOrders{
		lockForUpdateFn: func(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error) {
			return OrderTxView{ClientID: 7, ClientEmail: "reader@example.com", Total: dec(t, "60.00"), Status: model.OrderProcessing}, nil
		},
	}
	ledger := &mockLedger{balance: dec(t, "40.00")}
	pub := &mockPub{}

	svc := New(db, users, &mockCarts{}, orders, ledger, pub, nil)

	require.NoError(t, svc.Decline(ctx, 5, "clerk@example.com"))

	require.Len(t, ledger.credits, 1)
	require.Equal(t, int64(7), ledger.credits[0].clientID)
	require.True(t, ledger.credits[0].amount.Equal(dec(t, "60.00")))
	require.True(t, ledger.balance.Equal(dec(t, "100.00")))
	require.Equal(t, []terminalCall{{5, 99, model.OrderCanceled}}, orders.terminals)

	require.Len(t, pub.published, 1)
	require.Equal(t, events.OrderDeclined, pub.published[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_TerminalRejected(t *testing.T) {
	for _, status := range []model.OrderStatus{model.OrderConfirmed, model.OrderCanceled} {
		t.Run(string(status), func(t *testing.T) {
			ctx := context.Background()
			db, mock := newTestDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()
			mock.ExpectBegin()
			mock.ExpectRollback()

			users := &mockUsers{
				byEmailAndRoleFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
					return employee(99, email), nil
				},
			}
			orders := &mockOrders{
				lockForUpdateFn: func(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error) {
					return OrderTxView{ClientID: 7, Total: dec(t, "60.00"), Status: status}, nil
				},
			}
			ledger := &mockLedger{balance: dec(t, "100.00")}

			svc := New(db, users, &mockCarts{}, orders, ledger, &mockPub{}, nil)

			err := svc.Confirm(ctx, 5, "clerk@example.com")
			require.Equal(t, ErrInvalidState, Code(err))

			err = svc.Decline(ctx, 5, "clerk@example.com")
			require.Equal(t, ErrInvalidState, Code(err))

			require.NoError(t, mock.ExpectationsWereMet())
			require.Empty(t, ledger.credits)
			require.Empty(t, orders.terminals)
			require.True(t, ledger.balance.Equal(dec(t, "100.00")))
		})
	}
}

func TestTransition_EmployeeNotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)

	svc := New(db, &mockUsers{}, &mockCarts{}, &mockOrders{}, &mockLedger{}, &mockPub{}, nil)

	err := svc.Confirm(ctx, 5, "nobody@example.com")
	require.Equal(t, ErrEmployeeNotFound, Code(err))

	// resolved before any transaction starts
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	users := &mockUsers{
		byEmailAndRoleFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return employee(99, email), nil
		},
	}
	svc := New(db, users, &mockCarts{}, &mockOrders{}, &mockLedger{}, &mockPub{}, nil)

	err := svc.Decline(ctx, 404, "clerk@example.com")
	require.Equal(t, ErrOrderNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Place then decline walks the money all the way round:
// 100.00 -> place 60.00 -> 40.00 -> decline -> 100.00.
func TestPlaceThenDecline_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	ledger := &mockLedger{balance: dec(t, "100.00")}
	users := &mockUsers{
		lockClientFn: func(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error) {
			return 7, ledger.balance, nil
		},
		byEmailAndRoleFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return employee(99, email), nil
		},
	}
	carts := cartOf(model.CartLine{
		ID: 1, BookID: 3, BookName: "Kobzar", UnitPrice: dec(t, "30.00"), Quantity: 2,
	})
	orders := &mockOrders{}
	orders.lockForUpdateFn = func(ctx context.Context, tx *sql.Tx, orderID int64) (OrderTxView, error) {
		for _, o := range orders.inserted {
			if o.ID == orderID {
				return OrderTxView{ClientID: o.ClientID, ClientEmail: o.ClientEmail, Total: o.Total, Status: o.Status}, nil
			}
		}
		return OrderTxView{}, sql.ErrNoRows
	}

	svc := New(db, users, carts, orders, ledger, &mockPub{}, nil)

	o, err := svc.Place(ctx, "reader@example.com")
	require.NoError(t, err)
	require.True(t, ledger.balance.Equal(dec(t, "40.00")))

	require.NoError(t, svc.Decline(ctx, o.ID, "clerk@example.com"))
	require.True(t, ledger.balance.Equal(dec(t, "100.00")))

	require.NoError(t, mock.ExpectationsWereMet())
}
