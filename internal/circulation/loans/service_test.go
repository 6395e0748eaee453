package loans

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pustaka-backend/internal/circulation/loanview"
	"pustaka-backend/internal/platform/httpx"
)

type stock struct{ avail, total int }

type fakeLoanStore struct {
	loans map[string]*Loan
	books map[string]*stock
}

func newFakeLoanStore() *fakeLoanStore {
	return &fakeLoanStore{loans: map[string]*Loan{}, books: map[string]*stock{}}
}

func (f *fakeLoanStore) GetByID(_ context.Context, id string) (*Loan, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLoanStore) List(_ context.Context, fl Filter) ([]Loan, error) {
	var out []Loan
	for _, l := range f.loans {
		if fl.UserID != "" && l.UserID != fl.UserID {
			continue
		}
		if fl.Status != "" && l.Status != fl.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLoanStore) CountActive(_ context.Context, userID, bookID string) (int, error) {
	n := 0
	for _, l := range f.loans {
		if l.UserID == userID && l.BookID == bookID && !l.Status.Terminal() {
			n++
		}
	}
	return n, nil
}

func (f *fakeLoanStore) HasEligibleLoan(_ context.Context, userID, bookID string) (bool, error) {
	for _, l := range f.loans {
		if l.UserID == userID && l.BookID == bookID && l.Status != loanview.StatusPending &&
			l.Status != loanview.StatusApproved && l.Status != loanview.StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLoanStore) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	var n int64
	for _, l := range f.loans {
		if l.Status == loanview.StatusBorrowed && l.DueDate.Before(today) {
			l.Status = loanview.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeLoanStore) StatusesForTabs(_ context.Context, userID string) ([]loanview.Status, error) {
	var out []loanview.Status
	for _, l := range f.loans {
		if userID == "" || l.UserID == userID {
			out = append(out, l.Status)
		}
	}
	return out, nil
}

// InTx snapshots state and rolls back when fn fails, like the real
// transaction does.
func (f *fakeLoanStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LoanTx) error) error {
	loans := map[string]*Loan{}
	for k, v := range f.loans {
		cp := *v
		loans[k] = &cp
	}
	books := map[string]*stock{}
	for k, v := range f.books {
		cp := *v
		books[k] = &cp
	}

	if err := fn(ctx, &fakeTx{f}); err != nil {
		f.loans, f.books = loans, books
		return err
	}
	return nil
}

type fakeTx struct{ s *fakeLoanStore }

func (t *fakeTx) GetLoanForUpdate(_ context.Context, id string) (*Loan, error) {
	l, ok := t.s.loans[id]
	if !ok {
		return nil, httpx.ErrNotFound("loan not found")
	}
	cp := *l
	return &cp, nil
}

func (t *fakeTx) LockBookStock(_ context.Context, bookID string) (int, int, error) {
	b, ok := t.s.books[bookID]
	if !ok {
		return 0, 0, httpx.ErrNotFound("book not found")
	}
	return b.avail, b.total, nil
}

func (t *fakeTx) UpdateBookStock(_ context.Context, bookID string, availDelta, totalDelta int) error {
	b, ok := t.s.books[bookID]
	if !ok {
		return httpx.ErrInternal("failed to update book stock")
	}
	b.avail += availDelta
	b.total += totalDelta
	return nil
}

func (t *fakeTx) InsertLoan(_ context.Context, l *Loan) error {
	cp := *l
	t.s.loans[l.ID] = &cp
	return nil
}

func (t *fakeTx) UpdateLoanStatus(_ context.Context, l *Loan) error {
	if _, ok := t.s.loans[l.ID]; !ok {
		return httpx.ErrInternal("failed to update loan")
	}
	cp := *l
	t.s.loans[l.ID] = &cp
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type loanIDGen struct{ n int }

func (g *loanIDGen) New() (string, error) {
	g.n++
	return fmt.Sprintf("loan-%d", g.n), nil
}

var testNow = time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)

func newTestService(store *fakeLoanStore) *Service {
	return &Service{
		store: store,
		clock: fixedClock{t: testNow},
		id:    &loanIDGen{},
		log:   zap.NewNop(),
	}
}

func seedLoan(f *fakeLoanStore, id, userID string, st loanview.Status, due time.Time) *Loan {
	l := &Loan{
		ID: id, UserID: userID, BookID: "b1", Status: st,
		LoanDate: testNow.AddDate(0, 0, -5), DueDate: due, CreatedAt: testNow.AddDate(0, 0, -5),
	}
	f.loans[id] = l
	return l
}

func requireCode(t *testing.T, err error, code httpx.Code) {
	t.Helper()
	var api *httpx.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, code, api.Code)
}

func Test_Create_DurationBounds(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 3, total: 3}
	svc := newTestService(f)

	for _, days := range []int{0, -1, 31} {
		_, err := svc.Create(context.Background(), "u1", CreateLoanRequest{BookID: "b1", DurationDays: days})
		requireCode(t, err, httpx.CodeInvalidArgument)
	}
	assert.Empty(t, f.loans, "invalid durations must write nothing")

	res, err := svc.Create(context.Background(), "u1", CreateLoanRequest{BookID: "b1", DurationDays: 30})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusPending), res.Status)
	assert.Equal(t, testNow.AddDate(0, 0, 30), res.DueDate)
	assert.Equal(t, 3, f.books["b1"].avail, "stock is untouched until approval")
}

func Test_Create_BlocksSecondActiveLoan(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 3, total: 3}
	seedLoan(f, "l1", "u1", loanview.StatusBorrowed, testNow.AddDate(0, 0, 3))
	svc := newTestService(f)

	_, err := svc.Create(context.Background(), "u1", CreateLoanRequest{BookID: "b1", DurationDays: 7})
	requireCode(t, err, httpx.CodeConflict)

	// a returned loan no longer blocks
	f.loans["l1"].Status = loanview.StatusReturned
	_, err = svc.Create(context.Background(), "u1", CreateLoanRequest{BookID: "b1", DurationDays: 7})
	require.NoError(t, err)
}

func Test_Create_SoldOut(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 0, total: 2}
	svc := newTestService(f)

	_, err := svc.Create(context.Background(), "u1", CreateLoanRequest{BookID: "b1", DurationDays: 7})
	requireCode(t, err, httpx.CodeConflict)
	assert.Empty(t, f.loans)
}

func Test_Approve_DecrementsStock(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 3, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusPending, testNow.AddDate(0, 0, 7))
	svc := newTestService(f)

	notes := "ambil di meja depan"
	res, err := svc.Approve(context.Background(), "l1", DecisionRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusApproved), res.Status)
	require.NotNil(t, res.AdminNotes)
	assert.Equal(t, notes, *res.AdminNotes)
	assert.Equal(t, 2, f.books["b1"].avail)
	assert.Equal(t, 5, f.books["b1"].total)
}

func Test_Approve_OnlyFromPending(t *testing.T) {
	for _, st := range []loanview.Status{
		loanview.StatusApproved, loanview.StatusBorrowed, loanview.StatusReturning,
		loanview.StatusReturned, loanview.StatusRejected, loanview.StatusOverdue,
	} {
		t.Run(string(st), func(t *testing.T) {
			f := newFakeLoanStore()
			f.books["b1"] = &stock{avail: 3, total: 5}
			seedLoan(f, "l1", "u1", st, testNow.AddDate(0, 0, 7))
			svc := newTestService(f)

			_, err := svc.Approve(context.Background(), "l1", DecisionRequest{})
			requireCode(t, err, httpx.CodeConflict)
			assert.Equal(t, st, f.loans["l1"].Status)
			assert.Equal(t, 3, f.books["b1"].avail, "failed approval must not move stock")
		})
	}
}

func Test_Approve_SoldOut(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 0, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusPending, testNow.AddDate(0, 0, 7))
	svc := newTestService(f)

	_, err := svc.Approve(context.Background(), "l1", DecisionRequest{})
	requireCode(t, err, httpx.CodeConflict)
	assert.Equal(t, loanview.StatusPending, f.loans["l1"].Status)
}

func Test_Reject_LeavesStockAlone(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 3, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusPending, testNow.AddDate(0, 0, 7))
	svc := newTestService(f)

	res, err := svc.Reject(context.Background(), "l1", DecisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusRejected), res.Status)
	assert.Equal(t, 3, f.books["b1"].avail)

	// terminal: cannot be rejected again
	_, err = svc.Reject(context.Background(), "l1", DecisionRequest{})
	requireCode(t, err, httpx.CodeConflict)
}

func Test_Pickup_OnlyFromApproved(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusApproved, testNow.AddDate(0, 0, 7))
	seedLoan(f, "l2", "u2", loanview.StatusPending, testNow.AddDate(0, 0, 7))
	svc := newTestService(f)

	res, err := svc.Pickup(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusBorrowed), res.Status)
	assert.Equal(t, 2, f.books["b1"].avail, "stock already moved at approval")

	_, err = svc.Pickup(context.Background(), "l2")
	requireCode(t, err, httpx.CodeConflict)
}

func Test_RequestReturn_OwnerOnly(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusOverdue, testNow.AddDate(0, 0, -2))
	svc := newTestService(f)

	_, err := svc.RequestReturn(context.Background(), "u2", "l1", ReturnRequest{Condition: ConditionGood})
	requireCode(t, err, httpx.CodeForbidden)
	assert.Equal(t, loanview.StatusOverdue, f.loans["l1"].Status)
}

func Test_RequestReturn_GoodCompletesImmediately(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	// due today, so the return gate is open
	seedLoan(f, "l1", "u1", loanview.StatusBorrowed, testNow)
	svc := newTestService(f)

	res, err := svc.RequestReturn(context.Background(), "u1", "l1", ReturnRequest{Condition: ConditionGood})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusReturned), res.Status)
	require.NotNil(t, res.ReturnDate)
	assert.Equal(t, 3, f.books["b1"].avail, "good copy goes back on the shelf")
}

func Test_RequestReturn_BeforeDueDate(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusBorrowed, testNow.AddDate(0, 0, 3))
	svc := newTestService(f)

	_, err := svc.RequestReturn(context.Background(), "u1", "l1", ReturnRequest{Condition: ConditionGood})
	requireCode(t, err, httpx.CodeConflict)
	assert.Equal(t, loanview.StatusBorrowed, f.loans["l1"].Status)
}

func Test_RequestReturn_DamagedGoesToVerification(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusOverdue, testNow.AddDate(0, 0, -1))
	svc := newTestService(f)

	res, err := svc.RequestReturn(context.Background(), "u1", "l1", ReturnRequest{Condition: ConditionDamaged})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusReturning), res.Status)
	assert.Nil(t, res.ReturnDate, "not returned until verified")
	assert.Equal(t, 2, f.books["b1"].avail, "stock waits for verification")
}

func Test_RequestReturn_InvalidCondition(t *testing.T) {
	svc := newTestService(newFakeLoanStore())
	_, err := svc.RequestReturn(context.Background(), "u1", "l1", ReturnRequest{Condition: "BROKEN"})
	requireCode(t, err, httpx.CodeInvalidArgument)
}

func Test_VerifyReturn_Damaged(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	l := seedLoan(f, "l1", "u1", loanview.StatusReturning, testNow.AddDate(0, 0, -1))
	l.ReturnCondition.String = string(ConditionDamaged)
	l.ReturnCondition.Valid = true
	svc := newTestService(f)

	res, err := svc.VerifyReturn(context.Background(), "l1", DecisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusReturned), res.Status)
	assert.Equal(t, 3, f.books["b1"].avail)
	assert.Equal(t, 5, f.books["b1"].total)
}

func Test_VerifyReturn_LostShrinksCollection(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	l := seedLoan(f, "l1", "u1", loanview.StatusReturning, testNow.AddDate(0, 0, -1))
	l.ReturnCondition.String = string(ConditionLost)
	l.ReturnCondition.Valid = true
	svc := newTestService(f)

	res, err := svc.VerifyReturn(context.Background(), "l1", DecisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(loanview.StatusReturned), res.Status)
	assert.Equal(t, 2, f.books["b1"].avail, "a lost copy never comes back to the shelf")
	assert.Equal(t, 4, f.books["b1"].total)
}

func Test_VerifyReturn_OnlyFromReturning(t *testing.T) {
	f := newFakeLoanStore()
	f.books["b1"] = &stock{avail: 2, total: 5}
	seedLoan(f, "l1", "u1", loanview.StatusBorrowed, testNow.AddDate(0, 0, -1))
	svc := newTestService(f)

	_, err := svc.VerifyReturn(context.Background(), "l1", DecisionRequest{})
	requireCode(t, err, httpx.CodeConflict)
	assert.Equal(t, 2, f.books["b1"].avail)
}
