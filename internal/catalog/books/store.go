package books

import (
	"context"
	"database/sql"
	"errors"

	"pustaka-backend/internal/platform/db"
	"pustaka-backend/internal/platform/httpx"
)

type BookStore interface {
	GetByID(ctx context.Context, id string) (*Book, error)
	List(ctx context.Context, categoryID string) ([]Book, error)
	Insert(ctx context.Context, b *Book) error
	UpdateLocked(ctx context.Context, id string, apply func(b *Book) error) error
	Delete(ctx context.Context, id string) (int64, error)
	CountActiveLoans(ctx context.Context, bookID string) (int, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) BookStore { return &Store{db: conn} }

const bookCols = `
b.id, b.title, b.author, b.publisher, b.year, b.isbn, b.synopsis, b.cover_url,
b.category_id, b.total_stock, b.available_stock, b.average_rating, b.total_reviews,
b.created_at, c.name`

const bookJoin = `
FROM books b
LEFT JOIN categories c ON c.id = b.category_id`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Year, &b.ISBN, &b.Synopsis, &b.CoverURL,
		&b.CategoryID, &b.TotalStock, &b.AvailableStock, &b.AverageRating, &b.TotalReviews,
		&b.CreatedAt, &b.CategoryName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Book, error) {
	const q = `SELECT ` + bookCols + ` ` + bookJoin + ` WHERE b.id = ? LIMIT 1`
	return scanBook(s.db.QueryRowContext(ctx, q, id))
}

// List loads the catalog, optionally narrowed to a category. The search
// box filter happens in memory afterwards (FilterBooks), matching the
// load-all-then-filter contract of the catalog page.
func (s *Store) List(ctx context.Context, categoryID string) ([]Book, error) {
	q := `SELECT ` + bookCols + ` ` + bookJoin
	var args []any
	if categoryID != "" {
		q += " WHERE b.category_id = ?"
		args = append(args, categoryID)
	}
	q += " ORDER BY b.title ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `
INSERT INTO books (id, title, author, publisher, year, isbn, synopsis, cover_url,
	category_id, total_stock, available_stock, average_rating, total_reviews, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Publisher, b.Year, b.ISBN, b.Synopsis, b.CoverURL,
		b.CategoryID, b.TotalStock, b.AvailableStock)
	return err
}

// UpdateLocked rewrites a book inside one transaction with the row
// locked, so the stock recompute in apply sees counters no concurrent
// loan transition can move underneath it.
func (s *Store) UpdateLocked(ctx context.Context, id string, apply func(b *Book) error) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const sel = `
SELECT id, title, author, publisher, year, isbn, synopsis, cover_url,
	category_id, total_stock, available_stock
FROM books WHERE id = ? LIMIT 1 FOR UPDATE`
		var b Book
		err := tx.QueryRowContext(ctx, sel, id).Scan(
			&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Year, &b.ISBN, &b.Synopsis, &b.CoverURL,
			&b.CategoryID, &b.TotalStock, &b.AvailableStock)
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.ErrNotFound("book not found")
		}
		if err != nil {
			return err
		}

		if err := apply(&b); err != nil {
			return err
		}

		const upd = `
UPDATE books
SET title = ?, author = ?, publisher = ?, year = ?, isbn = ?, synopsis = ?, cover_url = ?,
	category_id = ?, total_stock = ?, available_stock = ?
WHERE id = ?`
		_, err = tx.ExecContext(ctx, upd,
			b.Title, b.Author, b.Publisher, b.Year, b.ISBN, b.Synopsis, b.CoverURL,
			b.CategoryID, b.TotalStock, b.AvailableStock, b.ID)
		return err
	})
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM books WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveLoans guards deletion: a book with loans in flight stays.
func (s *Store) CountActiveLoans(ctx context.Context, bookID string) (int, error) {
	const q = `
SELECT COUNT(*) FROM loans
WHERE book_id = ? AND status NOT IN ('RETURNED', 'REJECTED')`
	var n int
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
