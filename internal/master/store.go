package master

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Table and column names come from the Kind constants, never from user
// input, so building the query with Sprintf is safe here.

func (s *Store) selectCols(k Kind) string {
	return fmt.Sprintf(`
m.id, m.name, m.created_at,
(SELECT COUNT(*) FROM users u WHERE u.%s = m.id) AS used_by`, k.userColumn())
}

func scanEntry(row interface{ Scan(...any) error }) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UsedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) GetByID(ctx context.Context, k Kind, id string) (*Entry, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.id = ? LIMIT 1`, s.selectCols(k), k.table())
	return scanEntry(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByName(ctx context.Context, k Kind, name string) (*Entry, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.name = ? LIMIT 1`, s.selectCols(k), k.table())
	return scanEntry(s.db.QueryRowContext(ctx, q, name))
}

func (s *Store) List(ctx context.Context, k Kind) ([]Entry, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s m ORDER BY m.name ASC`, s.selectCols(k), k.table())
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, k Kind, e *Entry) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, name, created_at) VALUES (?, ?, NOW(6))`, k.table())
	_, err := s.db.ExecContext(ctx, q, e.ID, e.Name)
	return err
}

func (s *Store) Update(ctx context.Context, k Kind, e *Entry) (int64, error) {
	q := fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, k.table())
	res, err := s.db.ExecContext(ctx, q, e.Name, e.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, k Kind, id string) (int64, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, k.table())
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
