package ledgerrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestDebit_GuardedUpdateAndEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET balance = balance - $2 WHERE id = $1 AND role = 'CLIENT' AND balance >= $2 RETURNING balance`)).
		WithArgs(int64(7), dec(t, "60.00")).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("40.00"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO balance_entries (client_id, entry_type, amount, balance_after, order_id)`)).
		WithArgs(int64(7), string(model.EntryOrderCharge), dec(t, "-60.00"), dec(t, "40.00"), int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	orderID := int64(5)
	newBal, err := r.Debit(context.Background(), tx, 7, dec(t, "60.00"), &orderID)
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !newBal.Equal(dec(t, "40.00")) {
		t.Fatalf("new balance = %s; want 40.00", newBal)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDebit_InsufficientLeavesRowAlone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	// guard fails -> no row returned -> no entry insert
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET balance = balance - $2`)).
		WithArgs(int64(7), dec(t, "60.00")).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	_, err = r.Debit(context.Background(), tx, 7, dec(t, "60.00"), nil)
	if !errors.Is(err, ErrInsufficient) {
		t.Fatalf("got %v; want ErrInsufficient", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCredit_Uncapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET balance = balance + $2 WHERE id = $1 AND role = 'CLIENT' RETURNING balance`)).
		WithArgs(int64(7), dec(t, "60.00")).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("160.00"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO balance_entries`)).
		WithArgs(int64(7), string(model.EntryOrderRefund), dec(t, "60.00"), dec(t, "160.00"), int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	orderID := int64(5)
	newBal, err := r.Credit(context.Background(), tx, 7, dec(t, "60.00"), model.EntryOrderRefund, &orderID)
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if !newBal.Equal(dec(t, "160.00")) {
		t.Fatalf("new balance = %s; want 160.00", newBal)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
