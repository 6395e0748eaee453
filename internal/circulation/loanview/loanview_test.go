package loanview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustaka-backend/internal/circulation/loanview"
)

func Test_Label_ExactStrings(t *testing.T) {
	want := map[loanview.Status]string{
		loanview.StatusPending:   "Menunggu Persetujuan",
		loanview.StatusApproved:  "Disetujui",
		loanview.StatusBorrowed:  "Sedang Dipinjam",
		loanview.StatusReturning: "Menunggu Verifikasi",
		loanview.StatusReturned:  "Dikembalikan",
		loanview.StatusRejected:  "Ditolak",
		loanview.StatusOverdue:   "Terlambat",
	}
	require.Len(t, want, len(loanview.AllStatuses))
	for s, label := range want {
		assert.Equal(t, label, loanview.Label(s), "status %s", s)
	}
}

func Test_CanReturn(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status loanview.Status
		due    time.Time
		want   bool
	}{
		{name: "borrowed_due_today", status: loanview.StatusBorrowed, due: today, want: true},
		{name: "borrowed_due_tomorrow", status: loanview.StatusBorrowed, due: today.AddDate(0, 0, 1), want: false},
		{name: "borrowed_past_due", status: loanview.StatusBorrowed, due: today.AddDate(0, 0, -3), want: true},
		{name: "overdue_future_due_still_returnable", status: loanview.StatusOverdue, due: today.AddDate(0, 0, 7), want: true},
		{name: "overdue_past_due", status: loanview.StatusOverdue, due: today.AddDate(0, 0, -7), want: true},
		{name: "pending_never", status: loanview.StatusPending, due: today, want: false},
		{name: "returned_never", status: loanview.StatusReturned, due: today.AddDate(0, 0, -7), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loanview.CanReturn(tt.status, tt.due, today))
		})
	}
}

func Test_DaysRemaining(t *testing.T) {
	today := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 0, loanview.DaysRemaining(today, today))
	assert.Equal(t, 1, loanview.DaysRemaining(time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC), today))
	assert.Equal(t, -2, loanview.DaysRemaining(time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), today))
	assert.Equal(t, 7, loanview.DaysRemaining(today.AddDate(0, 0, 7), today))
}

func Test_Tabs_Counts(t *testing.T) {
	// admin loan page with one PENDING and one OVERDUE loan
	tabs := loanview.Tabs([]loanview.Status{loanview.StatusPending, loanview.StatusOverdue})

	byKey := map[string]loanview.Tab{}
	for _, tab := range tabs {
		byKey[tab.Key] = tab
	}

	assert.Equal(t, "Semua (2)", byKey["all"].Title())
	assert.Equal(t, "Pending (1)", byKey["pending"].Title())
	assert.Equal(t, "Terlambat (1)", byKey["overdue"].Title())
	assert.Equal(t, "Dipinjam (0)", byKey["borrowed"].Title())

	// selecting Terlambat keeps only the OVERDUE loan
	overdueTab := loanview.TabByKey("overdue")
	assert.False(t, overdueTab.Matches(loanview.StatusPending))
	assert.True(t, overdueTab.Matches(loanview.StatusOverdue))
}

func Test_Actions(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []loanview.Action{loanview.ActionApprove, loanview.ActionReject},
		loanview.AdminActions(loanview.StatusPending))
	assert.Equal(t, []loanview.Action{loanview.ActionVerifyReturn},
		loanview.AdminActions(loanview.StatusReturning))
	assert.Empty(t, loanview.AdminActions(loanview.StatusReturned))

	assert.Empty(t, loanview.StudentActions(loanview.StatusBorrowed, today.AddDate(0, 0, 5), today))
	assert.Equal(t, []loanview.Action{loanview.ActionRequestReturn},
		loanview.StudentActions(loanview.StatusOverdue, today.AddDate(0, 0, 5), today))

	for _, s := range []loanview.Status{loanview.StatusReturned, loanview.StatusRejected} {
		assert.True(t, s.Terminal())
		assert.Empty(t, loanview.AdminActions(s))
		assert.Empty(t, loanview.StudentActions(s, today, today))
	}
}
