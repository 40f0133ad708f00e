package employeesvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wixieee/BookStore/model"
	"github.com/wixieee/BookStore/util/hash"
)

type ErrCode string

const (
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrBadInput           ErrCode = "BAD_INPUT"
	ErrPasswordTooShort   ErrCode = "PASSWORD_TOO_SHORT"
	ErrPasswordWhitespace ErrCode = "PASSWORD_WHITESPACE"
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
	Create(ctx context.Context, u *model.User) error
	ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, email string, role model.Role) error
	ListByRole(ctx context.Context, role model.Role, search string, page model.PageRequest) (model.Page[model.User], error)
}

type Add struct {
	Email     string
	Name      string
	Password  string
	Phone     string
	BirthDate *time.Time
}

type Update struct {
	Email     string
	Name      string
	Password  string
	Phone     string
	BirthDate *time.Time
}

type Service interface {
	List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.User], error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Add(ctx context.Context, add Add) (*model.User, error)
	Update(ctx context.Context, email string, upd Update) (*model.User, error)
	Delete(ctx context.Context, email string) error
}

type service struct{ users UserRepo }

func New(users UserRepo) Service { return &service{users: users} }

func (s *service) List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.User], error) {
	return s.users.ListByRole(ctx, model.RoleEmployee, search, page)
}

func (s *service) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.ByEmailAndRole(ctx, email, model.RoleEmployee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return u, err
}

func (s *service) Add(ctx context.Context, add Add) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(add.Email))
	if email == "" || add.Name == "" {
		return nil, makeErr(ErrBadInput)
	}
	if err := validatePassword(add.Password); err != nil {
		return nil, err
	}
	hashed, err := hash.HashPassword(add.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         add.Name,
		Role:         model.RoleEmployee,
		BirthDate:    add.BirthDate,
	}
	if add.Phone != "" {
		u.Phone = &add.Phone
	}
	if err := s.users.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, email string, upd Update) (*model.User, error) {
	current, err := s.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if upd.Email != "" {
		current.Email = strings.ToLower(strings.TrimSpace(upd.Email))
	}
	if upd.Name != "" {
		current.Name = upd.Name
	}
	if upd.Phone != "" {
		current.Phone = &upd.Phone
	}
	if upd.BirthDate != nil {
		current.BirthDate = upd.BirthDate
	}
	if strings.TrimSpace(upd.Password) != "" {
		if err := validatePassword(upd.Password); err != nil {
			return nil, err
		}
		hashed, err := hash.HashPassword(upd.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = hashed
	}

	if err := s.users.UpdateProfile(ctx, current); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return current, nil
}

func (s *service) Delete(ctx context.Context, email string) error {
	err := s.users.Delete(ctx, email, model.RoleEmployee)
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	return err
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return makeErr(ErrPasswordTooShort)
	}
	if strings.Contains(password, " ") {
		return makeErr(ErrPasswordWhitespace)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
