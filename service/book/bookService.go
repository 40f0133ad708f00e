package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wixieee/BookStore/model"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrAlreadyExists ErrCode = "ALREADY_EXISTS"
	ErrBadInput      ErrCode = "BAD_INPUT"
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

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error)
	ExistsByNameAndAuthor(ctx context.Context, name, author string) (bool, error)
	List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Book], error)
}

type Service interface {
	List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Book], error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error)
	Add(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, id int64, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Book], error) {
	return s.r.List(ctx, search, page)
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error) {
	b, err := s.r.ByNameAndAuthor(ctx, name, author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) Add(ctx context.Context, b *model.Book) error {
	if b.Name == "" || b.Author == "" || b.Price.IsNegative() {
		return makeErr(ErrBadInput)
	}
	taken, err := s.r.ExistsByNameAndAuthor(ctx, b.Name, b.Author)
	if err != nil {
		return err
	}
	if taken {
		return makeErr(ErrAlreadyExists)
	}
	return s.r.Create(ctx, b)
}

func (s *service) Update(ctx context.Context, id int64, b *model.Book) error {
	if b.Name == "" || b.Author == "" || b.Price.IsNegative() {
		return makeErr(ErrBadInput)
	}
	current, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	// Renames must not collide with another title.
	if current.Name != b.Name || current.Author != b.Author {
		taken, err := s.r.ExistsByNameAndAuthor(ctx, b.Name, b.Author)
		if err != nil {
			return err
		}
		if taken {
			return makeErr(ErrAlreadyExists)
		}
	}

	b.ID = id
	if err := s.r.Update(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.r.Delete(ctx, id)
}
