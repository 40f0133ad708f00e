package cartrepo

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAddLine_MergesOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_lines (cart_id, book_id, quantity) VALUES ($1, $2, $3) ON CONFLICT (cart_id, book_id) DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`)).
		WithArgs(int64(11), int64(3), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.AddLine(context.Background(), tx, 11, 3, 2); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveLine_MissingLineIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_lines WHERE cart_id=$1 AND id=$2`)).
		WithArgs(int64(11), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.RemoveLine(context.Background(), tx, 11, 99); err != nil {
		t.Fatalf("RemoveLine should ignore missing lines, got %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLines_JoinsBookFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	r := New(db)

	rows := sqlmock.NewRows([]string{"id", "book_id", "name", "author", "price", "quantity"}).
		AddRow(int64(1), int64(3), "Kobzar", "Shevchenko", "30.00", 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cl.id, cl.book_id, b.name, b.author, b.price, cl.quantity FROM cart_lines cl JOIN books b ON b.id = cl.book_id`)).
		WithArgs(int64(11)).
		WillReturnRows(rows)

	lines, err := r.Lines(context.Background(), 11)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines; want 1", len(lines))
	}
	l := lines[0]
	if l.BookName != "Kobzar" || l.Quantity != 2 {
		t.Fatalf("unexpected line %+v", l)
	}
	if got := l.Subtotal().String(); got != "60.00" {
		t.Fatalf("subtotal = %s; want 60.00", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
