package employeesvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/wixieee/BookStore/model"
	"github.com/wixieee/BookStore/util/hash"
)

type mockRepo struct {
	createFn         func(ctx context.Context, u *model.User) error
	byEmailAndRoleFn func(ctx context.Context, email string, role model.Role) (*model.User, error)
	deleteFn         func(ctx context.Context, email string, role model.Role) error
}

var _ UserRepo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if m.byEmailAndRoleFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailAndRoleFn(ctx, email, role)
}

func (m *mockRepo) UpdateProfile(ctx context.Context, u *model.User) error { return nil }

func (m *mockRepo) Delete(ctx context.Context, email string, role model.Role) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, email, role)
}

func (m *mockRepo) ListByRole(ctx context.Context, role model.Role, search string, page model.PageRequest) (model.Page[model.User], error) {
	return model.Page[model.User]{}, nil
}

func TestAdd_Success(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 99
			return nil
		},
	}
	svc := New(m)

	u, err := svc.Add(context.Background(), Add{
		Email:    "Clerk@Example.COM",
		Name:     "Petro",
		Password: "supersecret",
		Phone:    "+380501234567",
	})
	require.NoError(t, err)
	require.Equal(t, int64(99), u.ID)
	require.Equal(t, "clerk@example.com", u.Email)
	require.Equal(t, model.RoleEmployee, u.Role)
	require.NotNil(t, u.Phone)
	require.Equal(t, "+380501234567", *u.Phone)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestAdd_PasswordRules(t *testing.T) {
	svc := New(&mockRepo{})

	_, err := svc.Add(context.Background(), Add{Email: "a@b.c", Name: "P", Password: "short"})
	require.Equal(t, ErrPasswordTooShort, Code(err))

	_, err = svc.Add(context.Background(), Add{Email: "a@b.c", Name: "P", Password: "has a space"})
	require.Equal(t, ErrPasswordWhitespace, Code(err))
}

func TestAdd_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m)

	_, err := svc.Add(context.Background(), Add{Email: "clerk@example.com", Name: "P", Password: "supersecret"})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestDelete_ScopedToEmployeeRole(t *testing.T) {
	var gotRole model.Role
	m := &mockRepo{
		deleteFn: func(ctx context.Context, email string, role model.Role) error {
			gotRole = role
			return nil
		},
	}
	svc := New(m)

	require.NoError(t, svc.Delete(context.Background(), "clerk@example.com"))
	require.Equal(t, model.RoleEmployee, gotRole)
}
