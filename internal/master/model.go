// Package master holds the reference data used to classify members:
// majors and classes. Both share one table shape and one rule, no
// deletion while members still reference the entry.
package master

import "time"

// Kind selects which reference table an operation works on.
type Kind string

const (
	KindMajor Kind = "major"
	KindClass Kind = "class"
)

func (k Kind) table() string {
	if k == KindClass {
		return "classes"
	}
	return "majors"
}

// userColumn is the users-table column that references this kind.
func (k Kind) userColumn() string {
	if k == KindClass {
		return "class_id"
	}
	return "major_id"
}

type Entry struct {
	ID        string
	Name      string
	UsedBy    int
	CreatedAt time.Time
}

type UpsertRequest struct {
	Name string `json:"name" binding:"required"`
}

type EntryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UsedBy    int       `json:"used_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntryResponse(e *Entry) EntryResponse {
	return EntryResponse{ID: e.ID, Name: e.Name, UsedBy: e.UsedBy, CreatedAt: e.CreatedAt}
}

// CanDelete is the gate the admin pages use to enable the delete
// button: referenced entries stay.
func CanDelete(usedBy int) bool { return usedBy == 0 }
