package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore { return &Store{db: db} }

const userCols = `id, name, email, password_hash, role, class_id, major_id, avatar_url, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ClassID,
		&u.MajorID,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) List(ctx context.Context, f UserFilter) ([]User, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR email LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}

	q := `SELECT ` + userCols + ` FROM users`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name ASC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (id, name, email, password_hash, role, class_id, major_id, avatar_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.ClassID, u.MajorID, u.AvatarURL)
	return err
}

func (s *Store) Update(ctx context.Context, u *User) (int64, error) {
	const q = `
UPDATE users
SET name = ?, email = ?, password_hash = ?, class_id = ?, major_id = ?, avatar_url = ?
WHERE id = ?
`
	res, err := s.db.ExecContext(ctx, q,
		u.Name, u.Email, u.PasswordHash, u.ClassID, u.MajorID, u.AvatarURL, u.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM users WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
