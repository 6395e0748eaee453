package loans

import (
	"database/sql"
	"time"

	"pustaka-backend/internal/circulation/loanview"
)

// Condition of the book when the student hands it back.
type Condition string

const (
	ConditionGood    Condition = "GOOD"
	ConditionDamaged Condition = "DAMAGED"
	ConditionLost    Condition = "LOST"
)

func (c Condition) Valid() bool {
	return c == ConditionGood || c == ConditionDamaged || c == ConditionLost
}

// Loan is one row of the loans table plus the joined display columns.
type Loan struct {
	ID              string
	UserID          string
	BookID          string
	Status          loanview.Status
	LoanDate        time.Time
	DueDate         time.Time
	ReturnDate      sql.NullTime
	ReturnCondition sql.NullString
	AdminNotes      sql.NullString
	CreatedAt       time.Time

	// joined
	BookTitle  string
	BookAuthor string
	BookCover  sql.NullString
	UserName   string
	UserEmail  string
}

type Filter struct {
	UserID string
	Status loanview.Status
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
