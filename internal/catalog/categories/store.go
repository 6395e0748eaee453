package categories

import (
	"context"
	"database/sql"
	"errors"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const catCols = `
c.id, c.name, c.description, c.created_at,
(SELECT COUNT(*) FROM books b WHERE b.category_id = c.id) AS book_count`

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.BookCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Category, error) {
	const q = `SELECT ` + catCols + ` FROM categories c WHERE c.id = ? LIMIT 1`
	return scanCategory(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByName(ctx context.Context, name string) (*Category, error) {
	const q = `SELECT ` + catCols + ` FROM categories c WHERE c.name = ? LIMIT 1`
	return scanCategory(s.db.QueryRowContext(ctx, q, name))
}

func (s *Store) List(ctx context.Context) ([]Category, error) {
	const q = `SELECT ` + catCols + ` FROM categories c ORDER BY c.name ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, c *Category) error {
	const q = `INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Description)
	return err
}

func (s *Store) Update(ctx context.Context, c *Category) (int64, error) {
	const q = `UPDATE categories SET name = ?, description = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Description, c.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM categories WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
