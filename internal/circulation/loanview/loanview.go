// Package loanview maps backend loan state to the labels, colors and
// enabled actions the portal shows. It owns no transitions; the loans
// service decides those, this package only presents them.
package loanview

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusBorrowed  Status = "BORROWED"
	StatusReturning Status = "RETURNING"
	StatusReturned  Status = "RETURNED"
	StatusRejected  Status = "REJECTED"
	StatusOverdue   Status = "OVERDUE"
)

// AllStatuses in display order.
var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusBorrowed,
	StatusReturning,
	StatusReturned,
	StatusRejected,
	StatusOverdue,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusBorrowed, StatusReturning,
		StatusReturned, StatusRejected, StatusOverdue:
		return true
	}
	return false
}

// Terminal reports whether no further transition exists.
func (s Status) Terminal() bool {
	return s == StatusReturned || s == StatusRejected
}

var labels = map[Status]string{
	StatusPending:   "Menunggu Persetujuan",
	StatusApproved:  "Disetujui",
	StatusBorrowed:  "Sedang Dipinjam",
	StatusReturning: "Menunggu Verifikasi",
	StatusReturned:  "Dikembalikan",
	StatusRejected:  "Ditolak",
	StatusOverdue:   "Terlambat",
}

// Label returns the exact user-facing string for a status.
func Label(s Status) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

var colors = map[Status]string{
	StatusPending:   "yellow",
	StatusApproved:  "blue",
	StatusBorrowed:  "green",
	StatusReturning: "orange",
	StatusReturned:  "gray",
	StatusRejected:  "red",
	StatusOverdue:   "red",
}

func Color(s Status) string {
	if c, ok := colors[s]; ok {
		return c
	}
	return "gray"
}

// Action is one of the buttons a row can show.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionVerifyReturn  Action = "verify_return"
	ActionRequestReturn Action = "request_return"
)

// AdminActions returns what an admin may do with a loan in this status.
func AdminActions(s Status) []Action {
	switch s {
	case StatusPending:
		return []Action{ActionApprove, ActionReject}
	case StatusReturning:
		return []Action{ActionVerifyReturn}
	default:
		return nil
	}
}

// StudentActions returns what the borrower may do. BORROWED only allows
// a return request once the due date has arrived; OVERDUE always does.
func StudentActions(s Status, due, today time.Time) []Action {
	if CanReturn(s, due, today) {
		return []Action{ActionRequestReturn}
	}
	return nil
}

// DaysRemaining is days(due) - days(today), negative once the due date
// has passed. Clock-time within the day is ignored.
func DaysRemaining(due, today time.Time) int {
	d := startOfDay(due)
	n := startOfDay(today)
	return int(d.Sub(n).Hours() / 24)
}

// CanReturn reports whether the borrower may request a return.
func CanReturn(s Status, due, today time.Time) bool {
	switch s {
	case StatusOverdue:
		return true
	case StatusBorrowed:
		return DaysRemaining(due, today) <= 0
	default:
		return false
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
