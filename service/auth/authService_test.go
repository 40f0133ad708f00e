package authsvc

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
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
}

var _ UserRepo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegisterClient_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.RegisterClient(ctx, model.RegisterReq{
		Email:    "Reader@Example.COM",
		Name:     "Olena",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "reader@example.com", u.Email)
	require.Equal(t, model.RoleClient, u.Role)
	require.True(t, u.Balance.IsZero())
	require.NotEqual(t, "supersecret", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegisterClient_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", 24)

	_, _, err := svc.RegisterClient(context.Background(), model.RegisterReq{Email: " ", Password: "x"})
	require.Equal(t, ErrBadInput, Code(err))

	_, _, err = svc.RegisterClient(context.Background(), model.RegisterReq{Email: "a@b.c", Password: "   "})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegisterClient_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.RegisterClient(context.Background(), model.RegisterReq{
		Email:    "reader@example.com",
		Name:     "Olena",
		Password: "supersecret",
	})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleClient}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.Login(context.Background(), model.LoginReq{Email: "reader@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "reader@example.com", Password: "nope"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", 24)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "ghost@example.com", Password: "whatever"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_Blocked(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Blocked: true}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "reader@example.com", Password: "supersecret"})
	require.Equal(t, ErrBlocked, Code(err))
}
