package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wixieee/BookStore/model"
)

const userCols = `id, email, password_hash, name, role, blocked, balance, phone, birth_date, created_at`

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)

	// LockClient takes a row lock on the client inside tx. All balance
	// reads on the checkout/refund paths go through here.
	LockClient(ctx context.Context, tx *sql.Tx, email string) (id int64, balance decimal.Decimal, err error)
	LockClientByID(ctx context.Context, tx *sql.Tx, id int64) (balance decimal.Decimal, err error)

	UpdateProfile(ctx context.Context, u *model.User) error
	SetBlocked(ctx context.Context, email string, blocked bool) error
	Delete(ctx context.Context, email string, role model.Role) error
	ListByRole(ctx context.Context, role model.Role, search string, page model.PageRequest) (model.Page[model.User], error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (email, password_hash, name, role, balance, phone, birth_date)
		VALUES (lower($1), $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		u.Email, u.PasswordHash, u.Name, u.Role, u.Balance, u.Phone, u.BirthDate,
	).Scan(&u.ID, &u.CreatedAt)
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.Blocked, &u.Balance, &u.Phone, &u.BirthDate, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE email = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *repo) ByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE email = lower($1) AND role = $2`
	return scanUser(r.db.QueryRowContext(ctx, q, email, role))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) LockClient(ctx context.Context, tx *sql.Tx, email string) (int64, decimal.Decimal, error) {
	const q = `
		SELECT id, balance
		FROM users
		WHERE email = lower($1) AND role = 'CLIENT'
		FOR UPDATE`
	var id int64
	var bal decimal.Decimal
	err := tx.QueryRowContext(ctx, q, email).Scan(&id, &bal)
	return id, bal, err
}

func (r *repo) LockClientByID(ctx context.Context, tx *sql.Tx, id int64) (decimal.Decimal, error) {
	const q = `
		SELECT balance
		FROM users
		WHERE id = $1 AND role = 'CLIENT'
		FOR UPDATE`
	var bal decimal.Decimal
	err := tx.QueryRowContext(ctx, q, id).Scan(&bal)
	return bal, err
}

func (r *repo) UpdateProfile(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET email = lower($2), name = $3, password_hash = $4, phone = $5, birth_date = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Phone, u.BirthDate)
	return err
}

func (r *repo) SetBlocked(ctx context.Context, email string, blocked bool) error {
	const q = `UPDATE users SET blocked = $2 WHERE email = lower($1)`
	res, err := r.db.ExecContext(ctx, q, email, blocked)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, email string, role model.Role) error {
	const q = `DELETE FROM users WHERE email = lower($1) AND role = $2`
	res, err := r.db.ExecContext(ctx, q, email, role)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var userSortCols = map[string]string{
	"email":   "email",
	"name":    "name",
	"created": "created_at",
}

func (r *repo) ListByRole(ctx context.Context, role model.Role, search string, page model.PageRequest) (model.Page[model.User], error) {
	page = page.Normalize()
	out := model.Page[model.User]{Page: page.Page, Size: page.Size}

	where := `WHERE role = $1`
	args := []any{role}
	if s := strings.TrimSpace(search); s != "" {
		where += ` AND (name ILIKE $2 OR email ILIKE $2)`
		args = append(args, "%"+s+"%")
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&out.Total); err != nil {
		return out, err
	}

	col, ok := userSortCols[page.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY %s %s, id %s LIMIT %d OFFSET %d`,
		userCols, where, col, dir, dir, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
			&u.Blocked, &u.Balance, &u.Phone, &u.BirthDate, &u.CreatedAt); err != nil {
			return out, err
		}
		out.Items = append(out.Items, u)
	}
	return out, rows.Err()
}
