package loans

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"pustaka-backend/internal/circulation/loanview"
	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

const (
	minDurationDays = 1
	maxDurationDays = 30
)

type Service struct {
	store LoanStore
	clock ident.Clock
	id    ident.IDGen
	log   *zap.Logger
}

func NewService(conn *sql.DB, log *zap.Logger) *Service {
	return &Service{
		store: NewStore(conn),
		clock: ident.RealClock{},
		id:    ident.ULIDGen{},
		log:   log,
	}
}

// Create files a PENDING request. Stock is not touched until approval,
// but a sold-out book is rejected up front so the student is not left
// waiting on a request that cannot be honored.
func (s *Service) Create(ctx context.Context, userID string, req CreateLoanRequest) (*LoanResponse, error) {
	if req.DurationDays < minDurationDays || req.DurationDays > maxDurationDays {
		return nil, httpx.ErrInvalid("duration_days must be between 1 and 30")
	}

	active, err := s.store.CountActive(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, httpx.ErrConflict("Anda sudah memiliki peminjaman aktif untuk buku ini")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	l := &Loan{
		ID:       id,
		UserID:   userID,
		BookID:   req.BookID,
		Status:   loanview.StatusPending,
		LoanDate: now,
		DueDate:  now.AddDate(0, 0, req.DurationDays),
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		avail, _, err := tx.LockBookStock(ctx, req.BookID)
		if err != nil {
			return err
		}
		if avail <= 0 {
			return httpx.ErrConflict("Stok buku habis")
		}
		return tx.InsertLoan(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, l.ID)
}

// Approve moves PENDING to APPROVED and takes one copy out of stock.
func (s *Service) Approve(ctx context.Context, loanID string, req DecisionRequest) (*LoanResponse, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != loanview.StatusPending {
			return httpx.ErrConflict("loan is not PENDING")
		}

		avail, _, err := tx.LockBookStock(ctx, l.BookID)
		if err != nil {
			return err
		}
		if avail <= 0 {
			return httpx.ErrConflict("Stok buku habis")
		}
		if err := tx.UpdateBookStock(ctx, l.BookID, -1, 0); err != nil {
			return err
		}

		l.Status = loanview.StatusApproved
		setNotes(l, req.Notes)
		return tx.UpdateLoanStatus(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loanID)
}

// Reject moves PENDING to its terminal REJECTED state.
func (s *Service) Reject(ctx context.Context, loanID string, req DecisionRequest) (*LoanResponse, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != loanview.StatusPending {
			return httpx.ErrConflict("loan is not PENDING")
		}
		l.Status = loanview.StatusRejected
		setNotes(l, req.Notes)
		return tx.UpdateLoanStatus(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loanID)
}

// Pickup marks an APPROVED loan as BORROWED once the student collects
// the book at the desk.
func (s *Service) Pickup(ctx context.Context, loanID string) (*LoanResponse, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != loanview.StatusApproved {
			return httpx.ErrConflict("loan is not APPROVED")
		}
		l.Status = loanview.StatusBorrowed
		return tx.UpdateLoanStatus(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loanID)
}

// RequestReturn is the student-side return. GOOD condition completes
// immediately; DAMAGED or LOST goes through admin verification.
func (s *Service) RequestReturn(ctx context.Context, userID, loanID string, req ReturnRequest) (*LoanResponse, error) {
	if !req.Condition.Valid() {
		return nil, httpx.ErrInvalid("condition must be GOOD, DAMAGED or LOST")
	}

	now := s.clock.Now()
	err := s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.UserID != userID {
			return httpx.ErrForbidden("not your loan")
		}
		if !loanview.CanReturn(l.Status, l.DueDate, now) {
			return httpx.ErrConflict("Pengembalian belum dapat diajukan")
		}

		l.ReturnCondition = sql.NullString{String: string(req.Condition), Valid: true}
		if req.Condition == ConditionGood {
			l.Status = loanview.StatusReturned
			l.ReturnDate = sql.NullTime{Time: now, Valid: true}
			if err := restoreStock(ctx, tx, l.BookID, ConditionGood); err != nil {
				return err
			}
		} else {
			l.Status = loanview.StatusReturning
		}
		return tx.UpdateLoanStatus(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loanID)
}

// VerifyReturn is the admin confirmation for a RETURNING loan.
func (s *Service) VerifyReturn(ctx context.Context, loanID string, req DecisionRequest) (*LoanResponse, error) {
	now := s.clock.Now()
	err := s.store.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != loanview.StatusReturning {
			return httpx.ErrConflict("loan is not RETURNING")
		}

		cond := ConditionDamaged
		if l.ReturnCondition.Valid {
			cond = Condition(l.ReturnCondition.String)
		}
		if err := restoreStock(ctx, tx, l.BookID, cond); err != nil {
			return err
		}

		l.Status = loanview.StatusReturned
		l.ReturnDate = sql.NullTime{Time: now, Valid: true}
		setNotes(l, req.Notes)
		return tx.UpdateLoanStatus(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loanID)
}

// restoreStock puts the copy back. A LOST copy shrinks the collection
// instead of coming back to the shelf.
func restoreStock(ctx context.Context, tx LoanTx, bookID string, cond Condition) error {
	if cond == ConditionLost {
		return tx.UpdateBookStock(ctx, bookID, 0, -1)
	}
	return tx.UpdateBookStock(ctx, bookID, 1, 0)
}

func (s *Service) Get(ctx context.Context, loanID string) (*LoanResponse, error) {
	l, err := s.store.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, httpx.ErrNotFound("loan not found")
	}
	resp := toLoanResponse(l, s.clock.Now())
	return &resp, nil
}

// List is the admin view: filtered rows plus the tab counters, which
// always count the full data set regardless of the active filter.
func (s *Service) List(ctx context.Context, f Filter) (*ListResponse, error) {
	ls, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	statuses, err := s.store.StatusesForTabs(ctx, f.UserID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &ListResponse{Loans: make([]LoanResponse, 0, len(ls))}
	for i := range ls {
		out.Loans = append(out.Loans, toLoanResponse(&ls[i], now))
	}
	for _, tab := range loanview.Tabs(statuses) {
		out.Tabs = append(out.Tabs, TabResponse{Key: tab.Key, Title: tab.Title(), Count: tab.Count})
	}
	return out, nil
}

// Report lists loans for the export screen, filterable by status and
// loan date range. Rendering the PDF itself is the frontend's problem.
func (s *Service) Report(ctx context.Context, f Filter) ([]LoanResponse, error) {
	ls, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]LoanResponse, 0, len(ls))
	for i := range ls {
		out = append(out, toLoanResponse(&ls[i], now))
	}
	return out, nil
}

// RunOverdueSweep periodically flips BORROWED loans whose due date has
// passed. Display-side the loanview computation already shows them as
// returnable, the sweep just makes the stored status catch up.
func (s *Service) RunOverdueSweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.MarkOverdue(ctx, startOfToday(s.clock.Now()))
			if err != nil {
				s.log.Warn("overdue sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("loans marked overdue", zap.Int64("count", n))
			}
		}
	}
}

func startOfToday(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setNotes(l *Loan, notes *string) {
	if notes != nil && *notes != "" {
		l.AdminNotes = sql.NullString{String: *notes, Valid: true}
	}
}
