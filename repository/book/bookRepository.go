package bookrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wixieee/BookStore/model"
)

const bookCols = `id, name, author, genre, age_group, language, pages, description, price, publication_date, image_path`

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error)
	ExistsByNameAndAuthor(ctx context.Context, name, author string) (bool, error)
	List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Book], error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (name, author, genre, age_group, language, pages, description, price, publication_date, image_path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		b.Name, b.Author, b.Genre, b.AgeGroup, b.Language, b.Pages,
		b.Description, b.Price, b.PublicationDate, b.ImagePath,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET name=$2, author=$3, genre=$4, age_group=$5, language=$6,
			pages=$7, description=$8, price=$9, publication_date=$10, image_path=$11
		WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Name, b.Author, b.Genre, b.AgeGroup, b.Language, b.Pages,
		b.Description, b.Price, b.PublicationDate, b.ImagePath)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	return err
}

func scanBook(row *sql.Row) (*model.Book, error) {
	b := &model.Book{}
	err := row.Scan(&b.ID, &b.Name, &b.Author, &b.Genre, &b.AgeGroup, &b.Language,
		&b.Pages, &b.Description, &b.Price, &b.PublicationDate, &b.ImagePath)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id=$1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) ByNameAndAuthor(ctx context.Context, name, author string) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE name=$1 AND author=$2`
	return scanBook(r.db.QueryRowContext(ctx, q, name, author))
}

func (r *repo) ExistsByNameAndAuthor(ctx context.Context, name, author string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE name=$1 AND author=$2)`,
		name, author).Scan(&exists)
	return exists, err
}

var bookSortCols = map[string]string{
	"name":   "name",
	"author": "author",
	"price":  "price",
	"date":   "publication_date",
}

func (r *repo) List(ctx context.Context, search string, page model.PageRequest) (model.Page[model.Book], error) {
	page = page.Normalize()
	out := model.Page[model.Book]{Page: page.Page, Size: page.Size}

	where := ""
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		where = `WHERE name ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+s+"%")
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books `+where, args...).Scan(&out.Total); err != nil {
		return out, err
	}

	col, ok := bookSortCols[page.Sort]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY %s %s, id %s LIMIT %d OFFSET %d`,
		bookCols, where, col, dir, dir, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Author, &b.Genre, &b.AgeGroup, &b.Language,
			&b.Pages, &b.Description, &b.Price, &b.PublicationDate, &b.ImagePath); err != nil {
			return out, err
		}
		out.Items = append(out.Items, b)
	}
	return out, rows.Err()
}
