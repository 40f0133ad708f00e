package cartsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wixieee/BookStore/model"
)

type ErrCode string

const (
	ErrClientNotFound ErrCode = "CLIENT_NOT_FOUND"
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
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
	ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
}

type BookRepo interface {
	ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error)
}

type CartRepo interface {
	FindByClient(ctx context.Context, clientID int64) (int64, error)
	Create(ctx context.Context, clientID int64) (int64, error)
	LockByClient(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error)
	Lines(ctx context.Context, cartID int64) ([]model.CartLine, error)
	AddLine(ctx context.Context, tx *sql.Tx, cartID, bookID int64, qty int) error
	SetQuantity(ctx context.Context, tx *sql.Tx, cartID, lineID int64, qty int) error
	RemoveLine(ctx context.Context, tx *sql.Tx, cartID, lineID int64) error
	Clear(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type Service interface {
	// Get returns the client's cart, creating an empty one on first
	// access. Fails only when the client itself does not exist.
	Get(ctx context.Context, clientEmail string) (*model.Cart, error)

	// AddBook merges qty into an existing line for the book or appends
	// a new one.
	AddBook(ctx context.Context, clientEmail, bookName, bookAuthor string, qty int) error

	// UpdateQuantity overwrites a line's quantity; qty <= 0 removes
	// the line. Missing lines are a no-op.
	UpdateQuantity(ctx context.Context, clientEmail string, lineID int64, qty int) error

	// RemoveLine deletes the line if present; idempotent.
	RemoveLine(ctx context.Context, clientEmail string, lineID int64) error

	Clear(ctx context.Context, clientEmail string) error
}

type service struct {
	db    *sql.DB
	users UserRepo
	books BookRepo
	carts CartRepo
}

func New(db *sql.DB, users UserRepo, books BookRepo, carts CartRepo) Service {
	return &service{db: db, users: users, books: books, carts: carts}
}

// ensureCart resolves the client and returns their cart id, creating
// the cart lazily.
func (s *service) ensureCart(ctx context.Context, clientEmail string) (clientID, cartID int64, err error) {
	client, err := s.users.ByEmailAndRole(ctx, clientEmail, model.RoleClient)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, makeErr(ErrClientNotFound)
		}
		return 0, 0, err
	}

	cartID, err = s.carts.FindByClient(ctx, client.ID)
	if errors.Is(err, sql.ErrNoRows) {
		cartID, err = s.carts.Create(ctx, client.ID)
	}
	if err != nil {
		return 0, 0, err
	}
	return client.ID, cartID, nil
}

func (s *service) Get(ctx context.Context, clientEmail string) (*model.Cart, error) {
	clientID, cartID, err := s.ensureCart(ctx, clientEmail)
	if err != nil {
		return nil, err
	}
	lines, err := s.carts.Lines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &model.Cart{ID: cartID, ClientID: clientID, Lines: lines}, nil
}

// mutate runs fn with the cart row locked.
func (s *service) mutate(ctx context.Context, clientEmail string, fn func(tx *sql.Tx, cartID int64) error) (err error) {
	clientID, _, err := s.ensureCart(ctx, clientEmail)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cartID, err := s.carts.LockByClient(ctx, tx, clientID)
	if err != nil {
		return err
	}
	if err = fn(tx, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) AddBook(ctx context.Context, clientEmail, bookName, bookAuthor string, qty int) error {
	if qty < 1 {
		qty = 1
	}

	book, err := s.books.ByNameAndAuthor(ctx, bookName, bookAuthor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}

	return s.mutate(ctx, clientEmail, func(tx *sql.Tx, cartID int64) error {
		return s.carts.AddLine(ctx, tx, cartID, book.ID, qty)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, clientEmail string, lineID int64, qty int) error {
	if qty <= 0 {
		return s.RemoveLine(ctx, clientEmail, lineID)
	}
	return s.mutate(ctx, clientEmail, func(tx *sql.Tx, cartID int64) error {
		return s.carts.SetQuantity(ctx, tx, cartID, lineID, qty)
	})
}

func (s *service) RemoveLine(ctx context.Context, clientEmail string, lineID int64) error {
	return s.mutate(ctx, clientEmail, func(tx *sql.Tx, cartID int64) error {
		return s.carts.RemoveLine(ctx, tx, cartID, lineID)
	})
}

func (s *service) Clear(ctx context.Context, clientEmail string) error {
	return s.mutate(ctx, clientEmail, func(tx *sql.Tx, cartID int64) error {
		return s.carts.Clear(ctx, tx, cartID)
	})
}
