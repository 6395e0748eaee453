package loans

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pustaka-backend/internal/circulation/loanview"
	"pustaka-backend/internal/platform/db"
	"pustaka-backend/internal/platform/httpx"
)

// LoanStore is the read side plus the transaction entry point. Every
// state transition runs inside InTx against a LoanTx so the service
// stays testable with an in-memory fake.
type LoanStore interface {
	GetByID(ctx context.Context, id string) (*Loan, error)
	List(ctx context.Context, f Filter) ([]Loan, error)
	CountActive(ctx context.Context, userID, bookID string) (int, error)
	HasEligibleLoan(ctx context.Context, userID, bookID string) (bool, error)
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	StatusesForTabs(ctx context.Context, userID string) ([]loanview.Status, error)
	InTx(ctx context.Context, fn func(ctx context.Context, tx LoanTx) error) error
}

// LoanTx is what a transition may touch while the relevant rows are
// locked.
type LoanTx interface {
	GetLoanForUpdate(ctx context.Context, id string) (*Loan, error)
	LockBookStock(ctx context.Context, bookID string) (available, total int, err error)
	UpdateBookStock(ctx context.Context, bookID string, availDelta, totalDelta int) error
	InsertLoan(ctx context.Context, l *Loan) error
	UpdateLoanStatus(ctx context.Context, l *Loan) error
}

type Store struct{ sql *sql.DB }

func NewStore(conn *sql.DB) LoanStore { return &Store{sql: conn} }

const loanCols = `
l.id, l.user_id, l.book_id, l.status, l.loan_date, l.due_date,
l.return_date, l.return_condition, l.admin_notes, l.created_at,
b.title, b.author, b.cover_url, u.name, u.email`

const loanJoin = `
FROM loans l
JOIN books b ON b.id = l.book_id
JOIN users u ON u.id = l.user_id`

func scanLoan(row interface{ Scan(...any) error }) (*Loan, error) {
	var l Loan
	err := row.Scan(
		&l.ID, &l.UserID, &l.BookID, &l.Status, &l.LoanDate, &l.DueDate,
		&l.ReturnDate, &l.ReturnCondition, &l.AdminNotes, &l.CreatedAt,
		&l.BookTitle, &l.BookAuthor, &l.BookCover, &l.UserName, &l.UserEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Loan, error) {
	const q = `SELECT ` + loanCols + ` ` + loanJoin + ` WHERE l.id = ? LIMIT 1`
	return scanLoan(s.sql.QueryRowContext(ctx, q, id))
}

func (s *Store) List(ctx context.Context, f Filter) ([]Loan, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "l.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "l.status = ?")
		args = append(args, string(f.Status))
	}
	if f.From != nil {
		where = append(where, "l.loan_date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "l.loan_date < ?")
		args = append(args, *f.To)
	}

	q := `SELECT ` + loanCols + ` ` + loanJoin
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY l.created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// CountActive counts the user's non-terminal loans for a book, used to
// block a second request while one is already in flight.
func (s *Store) CountActive(ctx context.Context, userID, bookID string) (int, error) {
	const q = `
SELECT COUNT(*) FROM loans
WHERE user_id = ? AND book_id = ? AND status NOT IN ('RETURNED', 'REJECTED')`
	var n int
	if err := s.sql.QueryRowContext(ctx, q, userID, bookID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// HasEligibleLoan reports whether the user ever held the book in a state
// that allows reviewing it.
func (s *Store) HasEligibleLoan(ctx context.Context, userID, bookID string) (bool, error) {
	const q = `
SELECT COUNT(*) FROM loans
WHERE user_id = ? AND book_id = ? AND status IN ('BORROWED', 'OVERDUE', 'RETURNING', 'RETURNED')`
	var n int
	if err := s.sql.QueryRowContext(ctx, q, userID, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkOverdue flips BORROWED loans past their due date. Run by the
// background sweep.
func (s *Store) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	const q = `UPDATE loans SET status = 'OVERDUE' WHERE status = 'BORROWED' AND due_date < ?`
	res, err := s.sql.ExecContext(ctx, q, today)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StatusesForTabs loads just the status column for the tab counters.
func (s *Store) StatusesForTabs(ctx context.Context, userID string) ([]loanview.Status, error) {
	q := `SELECT status FROM loans`
	var args []any
	if userID != "" {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	rows, err := s.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []loanview.Status
	for rows.Next() {
		var st loanview.Status
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx LoanTx) error) error {
	return db.RunInTx(ctx, s.sql, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

// txStore runs the locked pieces of a transition over the open
// transaction.
type txStore struct{ tx db.DBTX }

func (t *txStore) GetLoanForUpdate(ctx context.Context, id string) (*Loan, error) {
	const q = `
SELECT id, user_id, book_id, status, loan_date, due_date, return_date, return_condition, admin_notes, created_at
FROM loans WHERE id = ? LIMIT 1 FOR UPDATE`
	var l Loan
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.UserID, &l.BookID, &l.Status, &l.LoanDate, &l.DueDate,
		&l.ReturnDate, &l.ReturnCondition, &l.AdminNotes, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httpx.ErrNotFound("loan not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *txStore) LockBookStock(ctx context.Context, bookID string) (available, total int, err error) {
	const q = `SELECT available_stock, total_stock FROM books WHERE id = ? LIMIT 1 FOR UPDATE`
	if err = t.tx.QueryRowContext(ctx, q, bookID).Scan(&available, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, httpx.ErrNotFound("book not found")
		}
		return 0, 0, err
	}
	return available, total, nil
}

func (t *txStore) UpdateBookStock(ctx context.Context, bookID string, availDelta, totalDelta int) error {
	const q = `UPDATE books SET available_stock = available_stock + ?, total_stock = total_stock + ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, availDelta, totalDelta, bookID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return httpx.ErrInternal("failed to update book stock")
	}
	return nil
}

func (t *txStore) InsertLoan(ctx context.Context, l *Loan) error {
	const q = `
INSERT INTO loans (id, user_id, book_id, status, loan_date, due_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, NOW(6))`
	_, err := t.tx.ExecContext(ctx, q, l.ID, l.UserID, l.BookID, string(l.Status), l.LoanDate, l.DueDate)
	return err
}

func (t *txStore) UpdateLoanStatus(ctx context.Context, l *Loan) error {
	const q = `
UPDATE loans
SET status = ?, return_date = ?, return_condition = ?, admin_notes = ?
WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q,
		string(l.Status), l.ReturnDate, l.ReturnCondition, l.AdminNotes, l.ID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return httpx.ErrInternal("failed to update loan")
	}
	return nil
}
