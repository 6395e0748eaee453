package reviews

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Review struct {
	ID        string
	BookID    string
	UserID    string
	Rating    int
	Comment   sql.NullString
	CreatedAt time.Time

	UserName string
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) GetByUserAndBook(ctx context.Context, userID, bookID string) (*Review, error) {
	const q = `
SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, u.name
FROM reviews r JOIN users u ON u.id = r.user_id
WHERE r.user_id = ? AND r.book_id = ? LIMIT 1`
	return scanReview(s.db.QueryRowContext(ctx, q, userID, bookID))
}

func (s *Store) GetByID(ctx context.Context, id string) (*Review, error) {
	const q = `
SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, u.name
FROM reviews r JOIN users u ON u.id = r.user_id
WHERE r.id = ? LIMIT 1`
	return scanReview(s.db.QueryRowContext(ctx, q, id))
}

func scanReview(row interface{ Scan(...any) error }) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	const q = `
SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, u.name
FROM reviews r JOIN users u ON u.id = r.user_id
WHERE r.book_id = ? ORDER BY r.created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, r *Review) error {
	const q = `
INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at)
VALUES (?, ?, ?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.BookID, r.UserID, r.Rating, r.Comment)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM reviews WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasEligibleLoan gates review submission: the user must have held the
// book at least once.
func (s *Store) HasEligibleLoan(ctx context.Context, userID, bookID string) (bool, error) {
	const q = `
SELECT COUNT(*) FROM loans
WHERE user_id = ? AND book_id = ? AND status IN ('BORROWED', 'OVERDUE', 'RETURNING', 'RETURNED')`
	var n int
	if err := s.db.QueryRowContext(ctx, q, userID, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RefreshBookRating recomputes the denormalized rating columns after a
// review changes.
func (s *Store) RefreshBookRating(ctx context.Context, bookID string) error {
	const q = `
UPDATE books SET
	average_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE book_id = ?), 0),
	total_reviews = (SELECT COUNT(*) FROM reviews WHERE book_id = ?)
WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, bookID, bookID, bookID)
	return err
}
