package loanview

import "fmt"

// Tab is one entry of the status filter bar on the loan pages.
type Tab struct {
	Key      string
	Name     string
	Statuses []Status
	Count    int
}

// Title renders the tab caption, e.g. "Semua (2)".
func (t Tab) Title() string { return fmt.Sprintf("%s (%d)", t.Name, t.Count) }

// Matches reports whether a loan with this status belongs on the tab.
func (t Tab) Matches(s Status) bool {
	if len(t.Statuses) == 0 {
		return true
	}
	for _, ts := range t.Statuses {
		if ts == s {
			return true
		}
	}
	return false
}

var tabDefs = []Tab{
	{Key: "all", Name: "Semua"},
	{Key: "pending", Name: "Pending", Statuses: []Status{StatusPending}},
	{Key: "approved", Name: "Disetujui", Statuses: []Status{StatusApproved}},
	{Key: "borrowed", Name: "Dipinjam", Statuses: []Status{StatusBorrowed}},
	{Key: "returning", Name: "Pengembalian", Statuses: []Status{StatusReturning}},
	{Key: "returned", Name: "Dikembalikan", Statuses: []Status{StatusReturned}},
	{Key: "rejected", Name: "Ditolak", Statuses: []Status{StatusRejected}},
	{Key: "overdue", Name: "Terlambat", Statuses: []Status{StatusOverdue}},
}

// Tabs counts the given loans into the fixed tab bar.
func Tabs(statuses []Status) []Tab {
	out := make([]Tab, len(tabDefs))
	copy(out, tabDefs)
	for i := range out {
		for _, s := range statuses {
			if out[i].Matches(s) {
				out[i].Count++
			}
		}
	}
	return out
}

// TabByKey returns the tab definition for a filter key, defaulting to
// the "all" tab for unknown keys.
func TabByKey(key string) Tab {
	for _, t := range tabDefs {
		if t.Key == key {
			return t
		}
	}
	return tabDefs[0]
}
